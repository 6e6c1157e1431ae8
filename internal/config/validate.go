package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidStorage indicates an unusable storage section
	ErrInvalidStorage = errors.New("invalid storage settings")

	// ErrInvalidRebuild indicates an unknown mode or mandatory category
	ErrInvalidRebuild = errors.New("invalid rebuild settings")

	// ErrInvalidSources indicates a source section that cannot satisfy the rebuild
	ErrInvalidSources = errors.New("invalid sources")

	// ErrInvalidServe indicates invalid cache settings
	ErrInvalidServe = errors.New("invalid serve settings")
)

var validate = validator.New()

// sectionErrors maps the top-level struct a failing field lives in to its sentinel.
var sectionErrors = map[string]error{
	"Sources": ErrInvalidSources,
	"Storage": ErrInvalidStorage,
	"Rebuild": ErrInvalidRebuild,
	"Serve":   ErrInvalidServe,
}

// Validate checks that the configuration is valid and complete. Every
// problem is reported; the result matches the section sentinels with errors.Is.
func Validate(cfg *Config) error {
	var errs []error

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if err := validateMandatorySources(cfg); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// fieldError turns one tag failure into a readable error wrapping its
// section sentinel. Namespaces look like "Config.Storage.Driver".
func fieldError(fe validator.FieldError) error {
	parts := strings.Split(fe.StructNamespace(), ".")
	sentinel := ErrInvalidStorage
	if len(parts) > 1 {
		if s, ok := sectionErrors[parts[1]]; ok {
			sentinel = s
		}
	}

	field := strings.Join(parts[1:], ".")
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s], got '%v'", sentinel, field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Errorf("%w: %s cannot be negative, got %v", sentinel, field, fe.Value())
	case "required":
		return fmt.Errorf("%w: %s is required", sentinel, field)
	default:
		return fmt.Errorf("%w: %s failed %s", sentinel, field, fe.Tag())
	}
}

// validateMandatorySources rejects a mandatory category whose source is
// disabled, since it could never produce records.
func validateMandatorySources(cfg *Config) error {
	configured := map[string]bool{
		"tokens":        cfg.Sources.TokensDir != "",
		"components":    cfg.Sources.VueDir != "" || cfg.Sources.ReactDir != "",
		"css-utilities": true,
		"documentation": cfg.Sources.DocsDir != "",
		"icons":         cfg.Sources.IconsFile != "",
	}

	var errs []error
	for _, category := range cfg.Rebuild.Mandatory {
		if enabled, known := configured[category]; known && !enabled {
			errs = append(errs, fmt.Errorf("%w: %s is mandatory but has no source configured", ErrInvalidSources, category))
		}
	}
	return errors.Join(errs...)
}
