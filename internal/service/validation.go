package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

type fieldRule struct {
	label string
	tag   string
}

var (
	nameRule     = fieldRule{label: "Name", tag: "required"}
	emailRule    = fieldRule{label: "Email", tag: "required,email"}
	passwordRule = fieldRule{
		label: "Password",
		tag:   fmt.Sprintf("required,min=%d,maxbytes=%d", minPasswordLength, maxPasswordBytes),
	}
)

// fieldValidator turns validator tag failures into full, human readable
// messages such as "Name can't be blank".
type fieldValidator struct {
	validate *validator.Validate
}

func newFieldValidator() *fieldValidator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &fieldValidator{validate: v}
}

// maxBytes limits the byte length of a string; the builtin max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// check appends the message for the first failing rule of value, if any.
func (v *fieldValidator) check(messages []string, rule fieldRule, value string) []string {
	err := v.validate.Var(value, rule.tag)
	if err == nil {
		return messages
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return append(messages, rule.label+" is invalid")
	}
	return append(messages, message(rule.label, verrs[0]))
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " can't be blank"
	case "min":
		return fmt.Sprintf("%s is too short (minimum is %s characters)", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s is too long (maximum is %s bytes)", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
