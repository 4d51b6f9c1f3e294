package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// supportedSuffixes lists the compressed archive suffixes the pipeline can open.
var supportedSuffixes = map[string]struct{}{
	".bz2":  {},
	".gz":   {},
	".zst":  {},
	".json": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStruct(); err != nil {
		return err
	}
	if err := c.validateSuffixes(); err != nil {
		return err
	}
	if err := c.validateLanguage(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStruct() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

func (c *Config) validateSuffixes() error {
	for _, suffix := range c.Pipeline.Suffixes {
		if _, ok := supportedSuffixes[suffix]; !ok {
			return fmt.Errorf("%w: pipeline.suffixes: unsupported suffix %q (supported: .bz2, .gz, .zst, .json)", ErrInvalid, suffix)
		}
	}
	return nil
}

func (c *Config) validateLanguage() error {
	if _, err := language.Parse(c.Dictionary.Language); err != nil {
		return fmt.Errorf("%w: dictionary.language: %v", ErrInvalid, err)
	}
	return nil
}
