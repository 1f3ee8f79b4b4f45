package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeLayout()
	c.normalizeRsync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("RCSARCHIVE_DATA_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataRoot = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("RCSARCHIVE_ARCHIVE_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ArchiveRoot = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.DataRoot, err = expandPath(strings.TrimSpace(c.Paths.DataRoot)); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	if c.Paths.ArchiveRoot, err = expandPath(strings.TrimSpace(c.Paths.ArchiveRoot)); err != nil {
		return fmt.Errorf("paths.archive_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() {
	c.Archive.MoveAgeThreshold = strings.TrimSpace(c.Archive.MoveAgeThreshold)
	if c.Archive.MoveAgeThreshold == "" {
		c.Archive.MoveAgeThreshold = defaultMoveAgeThreshold.String()
	}
}

func (c *Config) normalizeLayout() {
	c.Layout.KindA = strings.TrimSpace(c.Layout.KindA)
	if c.Layout.KindA == "" {
		c.Layout.KindA = defaultKindA
	}
	c.Layout.KindB = strings.TrimSpace(c.Layout.KindB)
	if c.Layout.KindB == "" {
		c.Layout.KindB = defaultKindB
	}
	c.Layout.SummitDir = strings.TrimSpace(c.Layout.SummitDir)
	if c.Layout.SummitDir == "" {
		c.Layout.SummitDir = defaultSummitDir
	}
	// The suffix is appended verbatim, so only an entirely empty value falls back.
	if c.Layout.UnsyncedSuffix == "" {
		c.Layout.UnsyncedSuffix = defaultUnsyncedSuffix
	}
	if c.Layout.PatientDirOverrides == nil {
		c.Layout.PatientDirOverrides = map[string]string{}
	}
}

func (c *Config) normalizeRsync() {
	c.Rsync.Binary = strings.TrimSpace(c.Rsync.Binary)
	if c.Rsync.Binary == "" {
		c.Rsync.Binary = defaultRsyncBinary
	}
	if c.Rsync.TimeoutSeconds < 0 {
		c.Rsync.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File == "" {
		c.Logging.File = defaultLogFile
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
