package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"userauth/internal/config"
	"userauth/internal/db"
	apperrors "userauth/internal/errors"
	"userauth/internal/logger"
	"userauth/internal/repository"
	"userauth/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var demoUsers = []SeedUser{
	{Name: "Demo User", Email: "demo@example.com", Password: "password"},
	{Name: "Jane Doe", Email: "jane@example.com", Password: "password"},
}

func main() {
	file := flag.String("file", "", "JSON file with an array of {name, email, password}; demo users when empty")
	flag.Parse()

	log := logger.New("seed", "info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	users := demoUsers
	if *file != "" {
		users, err = readSeedFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("read seed file")
		}
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	svc := service.NewUserService(repository.NewUserRepository(gormDB), nil)
	created, skipped, err := seed(log.WithContext(context.Background()), svc, users)
	if err != nil {
		log.Fatal().Err(err).Int("created", created).Msg("seed users")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("seed completed")
}

// seed creates every user through the regular validation path. Entries that
// fail validation, e.g. an email already taken, are skipped.
func seed(ctx context.Context, svc service.UserService, users []SeedUser) (created, skipped int, err error) {
	log := logger.FromContext(ctx)
	for _, u := range users {
		name, email, password := u.Name, u.Email, u.Password
		_, err := svc.CreateUser(ctx, service.UserInput{Name: &name, Email: &email, Password: &password})
		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			created++
		case errors.As(err, &verr):
			log.Warn().Str("email", email).Strs("errors", verr.Messages).Msg("skipping user")
			skipped++
		default:
			return created, skipped, fmt.Errorf("create %s: %w", email, err)
		}
	}
	return created, skipped, nil
}

func readSeedFile(path string) ([]SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var users []SeedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return users, nil
}
