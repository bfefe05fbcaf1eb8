package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	containerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
)

// validatorInstance configures and returns the shared validator instance.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("container_name", func(fl validator.FieldLevel) bool {
			return containerNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig checks a parsed configuration against the schema rules.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return n8nerrors.NewValidationError("", "configuration cannot be nil", nil)
	}

	err := validatorInstance().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return n8nerrors.NewValidationError("", err.Error(), err)
	}

	first := fieldErrors[0]
	return n8nerrors.NewValidationError(fieldPath(first), ruleMessage(first), err)
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is like "Config.Admin.Email"; drop the root struct name.
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "value is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "http_url":
		return "must be an http(s) URL"
	case "hostname_port":
		return "must be a host:port address"
	case "container_name":
		return "must be a valid container name"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
