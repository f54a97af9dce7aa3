package util

import (
	"strings"

	"github.com/pkg/errors"
)

// NormalizeFormat normalizes the format string to lowercase.
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// ValidateFormat checks format against the formats a command supports.
func ValidateFormat(format string, valid ...string) error {
	format = NormalizeFormat(format)
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return errors.Errorf("invalid format: %s. Valid formats are: %s", format, strings.Join(valid, ", "))
}
