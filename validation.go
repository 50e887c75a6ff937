package cryptutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// KeyfileExtension is the suffix every keyfile path must carry
const KeyfileExtension = ".key"

var validate = validator.New()

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(field, path string) error {
	if path == "" {
		return NewValidationError(field, path, ErrEmptyPath)
	}
	return nil
}

// ValidateKeyfilePath checks that path names a keyfile. The check is a plain
// suffix match on the path as given.
func ValidateKeyfilePath(path string) error {
	if err := ValidateFilePath("path", path); err != nil {
		return err
	}
	if !strings.HasSuffix(path, KeyfileExtension) {
		return NewValidationError("path", path, ErrInvalidExtension)
	}
	return nil
}

// validateConfig runs the struct tag constraints of a config and reports
// the first violation as a *ValidationError.
func validateConfig(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   fe.Namespace(),
			Value:   fe.Value(),
			Message: fmt.Sprintf("failed %q constraint", fe.ActualTag()),
			Err:     err,
		}
	}
	return &ValidationError{Message: err.Error(), Err: err}
}
