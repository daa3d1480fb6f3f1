package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules that cannot
// be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The selected store type must carry the options it requires.
	if cfg.Store.Type == "badger" {
		inMemory, _ := cfg.Store.Badger["in_memory"].(bool)
		path, _ := cfg.Store.Badger["path"].(string)
		if !inMemory && path == "" {
			return fmt.Errorf("store.badger: path is required unless in_memory is true")
		}
	}

	if cfg.Content.Type == "filesystem" {
		if path, _ := cfg.Content.Filesystem["path"].(string); path == "" {
			return fmt.Errorf("content.filesystem: path is required")
		}
	}

	if cfg.Content.Type == "s3" {
		if bucket, _ := cfg.Content.S3["bucket"].(string); bucket == "" {
			return fmt.Errorf("content.s3: bucket is required")
		}
		if region, _ := cfg.Content.S3["region"].(string); region == "" {
			return fmt.Errorf("content.s3: region is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
