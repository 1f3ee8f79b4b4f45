package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		return errors.New("paths.data_root must be set (or export RCSARCHIVE_DATA_ROOT)")
	}
	if strings.TrimSpace(c.Paths.ArchiveRoot) == "" {
		return errors.New("paths.archive_root must be set (or export RCSARCHIVE_ARCHIVE_ROOT)")
	}
	if filepath.Clean(c.Paths.DataRoot) == filepath.Clean(c.Paths.ArchiveRoot) {
		return errors.New("paths.archive_root must differ from paths.data_root")
	}
	return nil
}

func (c *Config) validateArchive() error {
	threshold, err := time.ParseDuration(c.Archive.MoveAgeThreshold)
	if err != nil {
		return fmt.Errorf("archive.move_age_threshold: %w", err)
	}
	if threshold < 0 {
		return errors.New("archive.move_age_threshold must not be negative")
	}
	if c.Archive.FirstPatient < 1 {
		return errors.New("archive.first_patient must be >= 1")
	}
	if c.Archive.LastPatient < c.Archive.FirstPatient {
		return errors.New("archive.last_patient must be >= archive.first_patient")
	}
	if c.Archive.LastPatient > 99 {
		return errors.New("archive.last_patient must be <= 99 (subject IDs use two digits)")
	}
	return nil
}

func (c *Config) validateLayout() error {
	layoutNames := []struct{ key, value string }{
		{"layout.kind_a", c.Layout.KindA},
		{"layout.kind_b", c.Layout.KindB},
		{"layout.summit_dir", c.Layout.SummitDir},
		{"layout.unsynced_suffix", c.Layout.UnsyncedSuffix},
	}
	for _, n := range layoutNames {
		if strings.TrimSpace(n.value) == "" {
			return fmt.Errorf("%s must not be blank", n.key)
		}
	}
	if c.Layout.KindA == c.Layout.KindB {
		return errors.New("layout.kind_a and layout.kind_b must differ")
	}
	for _, name := range []string{c.Layout.KindA, c.Layout.KindB, c.Layout.SummitDir} {
		if strings.ContainsRune(name, filepath.Separator) {
			return fmt.Errorf("layout name %q must be a single path segment", name)
		}
	}
	for key, value := range c.Layout.PatientDirOverrides {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return fmt.Errorf("layout.patient_dir_overrides: key %q is not a patient index", key)
		}
		if index < 1 {
			return fmt.Errorf("layout.patient_dir_overrides: index %d must be >= 1", index)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("layout.patient_dir_overrides: index %d has an empty directory name", index)
		}
	}
	return nil
}
