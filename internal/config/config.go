package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the filesystem roots the archiver reads from and writes to.
type Paths struct {
	DataRoot    string `toml:"data_root"`
	ArchiveRoot string `toml:"archive_root"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
}

// Archive contains the session selection policy.
type Archive struct {
	// MoveAgeThreshold is a Go duration string ("8h", "90m"). Sessions strictly
	// younger than this are left in place.
	MoveAgeThreshold string `toml:"move_age_threshold"`
	FirstPatient     int    `toml:"first_patient"`
	LastPatient      int    `toml:"last_patient"`
}

// Layout describes the on-disk naming conventions of the synced tree and the
// archive.
type Layout struct {
	KindA          string `toml:"kind_a"`
	KindB          string `toml:"kind_b"`
	SummitDir      string `toml:"summit_dir"`
	UnsyncedSuffix string `toml:"unsynced_suffix"`
	// PatientDirOverrides maps a patient index (decimal string key) to the
	// directory name used on disk when it differs from RCS<index>.
	PatientDirOverrides map[string]string `toml:"patient_dir_overrides"`
}

// Rsync contains settings for the external copy/verify tool.
type Rsync struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// History contains settings for the SQLite audit ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	File          string `toml:"file"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for rcsarchive.
//
// Configuration sections:
//   - Paths: synced data root, archive root, log and state directories
//   - Archive: age threshold and patient index range
//   - Layout: kind directory names, SummitData segment, directory overrides
//   - Subjects: explicit extra subjects mapped to one path or a list of paths
//   - Rsync: copy tool binary and optional timeout
//   - History: SQLite audit ledger toggle
//   - Logging: log format, level, file sink and rotation
type Config struct {
	Paths    Paths          `toml:"paths"`
	Archive  Archive        `toml:"archive"`
	Layout   Layout         `toml:"layout"`
	Subjects map[string]any `toml:"subjects"`
	Rsync    Rsync          `toml:"rsync"`
	History  History        `toml:"history"`
	Logging  Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rcsarchive/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rcsarchive.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the archiver owns. The data and
// archive roots are never created here: a missing data root simply yields no
// subjects, and archive subtrees are created per move.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MoveAgeThreshold returns the parsed minimum session age. Load rejects
// unparseable values, so the fallback only applies to hand-built configs.
func (c *Config) MoveAgeThreshold() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Archive.MoveAgeThreshold))
	if err != nil || d < 0 {
		return defaultMoveAgeThreshold
	}
	return d
}

// RsyncTimeout returns the per-invocation copy timeout; zero means none.
func (c *Config) RsyncTimeout() time.Duration {
	if c.Rsync.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Rsync.TimeoutSeconds) * time.Second
}

// PatientDirOverrides returns the override table keyed by patient index.
// Entries with keys that are not integers are dropped; Validate reports them.
func (c *Config) PatientDirOverrides() map[int]string {
	out := make(map[int]string, len(c.Layout.PatientDirOverrides))
	for key, value := range c.Layout.PatientDirOverrides {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			continue
		}
		out[index] = strings.TrimSpace(value)
	}
	return out
}

// LogFilePath returns the absolute path of the audit log file sink.
func (c *Config) LogFilePath() string {
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(c.Paths.LogDir, c.Logging.File)
}

// HistoryPath returns the location of the SQLite audit ledger.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the single-instance run lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "rcsarchive.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
