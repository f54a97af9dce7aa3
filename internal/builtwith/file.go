package builtwith

import (
	"os"
	"path/filepath"

	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"
)

type LoadOptions struct {
	// Repair runs malformed documents through jsonrepair before giving up.
	Repair bool
}

// LoadFile reads a previously saved BuiltWith response.
func LoadFile(path string, opts LoadOptions) (Profile, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, errors.Wrapf(ErrFileNotFound, "%s", path)
		}
		return Profile{}, errors.Wrapf(err, "failed to read %s", path)
	}

	profile, err := Parse(blob)
	if err == nil {
		return profile, nil
	}
	if !opts.Repair {
		return Profile{}, errors.Wrapf(err, "invalid JSON in file %s", path)
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(blob))
	if repairErr != nil {
		return Profile{}, errors.Wrapf(ErrInvalidJSON, "invalid JSON in file %s (repair failed: %v)", path, repairErr)
	}
	profile, err = Parse([]byte(repaired))
	if err != nil {
		return Profile{}, errors.Wrapf(err, "invalid JSON in file %s after repair", path)
	}
	return profile, nil
}

// SaveFile writes the profile indented, creating parent directories.
func SaveFile(path string, profile Profile) error {
	if profile.IsZero() {
		return errors.New("nothing to save: empty profile")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, profile.Pretty(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
