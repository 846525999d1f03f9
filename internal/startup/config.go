package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
)

const (
	envPrefix = "MEDIA_CATALOG"
	appName   = "media-catalog"

	// DefaultTransferMaxBytes caps transfer buffers when nothing else does.
	DefaultTransferMaxBytes int64 = 256 << 20

	databaseFile = "catalog.db"
)

var (
	// ErrConfigInvalid is wrapped by every configuration validation error.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// Config holds all application configuration
type Config struct {
	StorageRoot  string
	DatabaseDir  string
	ReservedDirs []string
	Extensions   mediatypes.ExtensionSets
	RootBoundary bool
	ScanWorkers  int
	// TransferMaxBytes is 0 when the budget should be derived from the
	// container memory limit.
	TransferMaxBytes int64
	MetricsAddr      string
	Watch            bool

	// Derived
	DatabasePath string
	// ConfigFile is the file that was read, or "" when none was found.
	ConfigFile string
}

// DefaultConfigPaths returns the directories searched for config.yaml.
func DefaultConfigPaths() []string {
	paths := []string{"."}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, appName))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, "."+appName))
	}

	return paths
}

func setDefaults(v *viper.Viper) {
	root := "."
	if home, err := os.UserHomeDir(); err == nil {
		root = home
	}
	dbDir := filepath.Join(os.TempDir(), appName)
	if cacheDir, err := os.UserCacheDir(); err == nil {
		dbDir = filepath.Join(cacheDir, appName)
	}

	exts := mediatypes.DefaultExtensionSets()

	v.SetDefault("storage_root", root)
	v.SetDefault("database_dir", dbDir)
	v.SetDefault("reserved_dirs", []string{"Android"})
	v.SetDefault("photo_ext", exts.Photo)
	v.SetDefault("video_ext", exts.Video)
	v.SetDefault("audio_ext", exts.Audio)
	v.SetDefault("root_boundary", false)
	v.SetDefault("scan_workers", 0)
	v.SetDefault("transfer_max_bytes", 0)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("watch", true)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	short := map[string]string{
		"storage_root": "STORAGE_ROOT",
		"database_dir": "DATABASE_DIR",
		"scan_workers": "SCAN_WORKERS",
	}
	for key, name := range short {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), name); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig builds the configuration from path (or the default search
// paths when path is empty), the environment and defaults. A missing file is
// only an error when path was given explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		logging.Debug("No config file found, using environment and defaults")
	}

	cfg := &Config{
		StorageRoot:  strings.TrimSpace(v.GetString("storage_root")),
		DatabaseDir:  strings.TrimSpace(v.GetString("database_dir")),
		ReservedDirs: stringList(v, "reserved_dirs"),
		Extensions: mediatypes.ExtensionSets{
			Photo: stringList(v, "photo_ext"),
			Video: stringList(v, "video_ext"),
			Audio: stringList(v, "audio_ext"),
		}.Normalize(),
		RootBoundary:     v.GetBool("root_boundary"),
		ScanWorkers:      v.GetInt("scan_workers"),
		TransferMaxBytes: v.GetInt64("transfer_max_bytes"),
		MetricsAddr:      strings.TrimSpace(v.GetString("metrics_addr")),
		Watch:            v.GetBool("watch"),
		ConfigFile:       v.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var err error
	cfg.StorageRoot, err = filepath.Abs(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root path: %w", err)
	}
	cfg.DatabaseDir, err = filepath.Abs(cfg.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	cfg.DatabasePath = filepath.Join(cfg.DatabaseDir, databaseFile)

	logConfig(cfg)
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorageRoot == "" {
		return fmt.Errorf("%w: storage_root is empty", ErrConfigInvalid)
	}
	if c.DatabaseDir == "" {
		return fmt.Errorf("%w: database_dir is empty", ErrConfigInvalid)
	}
	if c.ScanWorkers < 0 {
		return fmt.Errorf("%w: scan_workers must not be negative, got %d", ErrConfigInvalid, c.ScanWorkers)
	}
	if c.TransferMaxBytes < 0 {
		return fmt.Errorf("%w: transfer_max_bytes must not be negative, got %d", ErrConfigInvalid, c.TransferMaxBytes)
	}
	if len(c.Extensions.Photo)+len(c.Extensions.Video)+len(c.Extensions.Audio) == 0 {
		return fmt.Errorf("%w: no media extensions configured", ErrConfigInvalid)
	}
	return nil
}

// PrepareDatabaseDir creates the database directory and checks that it is
// writable. The database cannot work without it.
func (c *Config) PrepareDatabaseDir() error {
	if err := ensureDirectory(c.DatabaseDir, "database"); err != nil {
		return fmt.Errorf("database directory error: %w", err)
	}
	if err := testWriteAccess(c.DatabaseDir); err != nil {
		return fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Debug("  [OK] Database directory is writable")
	return nil
}

// stringList reads a list key. Lists from YAML arrive as slices; lists from
// the environment arrive as one comma separated string.
func stringList(v *viper.Viper, key string) []string {
	raw := v.Get(key)
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	default:
		parts = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func logConfig(c *Config) {
	logging.Debug("------------------------------------------------------------")
	logging.Debug("CONFIGURATION")
	logging.Debug("------------------------------------------------------------")
	if c.ConfigFile != "" {
		logging.Debug("  Config file:        %s", c.ConfigFile)
	}
	logging.Debug("  STORAGE_ROOT:       %s", c.StorageRoot)
	logging.Debug("  DATABASE_DIR:       %s", c.DatabaseDir)
	logging.Debug("  RESERVED_DIRS:      %s", strings.Join(c.ReservedDirs, ","))
	logging.Debug("  PHOTO_EXT:          %s", strings.Join(c.Extensions.Photo, ","))
	logging.Debug("  VIDEO_EXT:          %s", strings.Join(c.Extensions.Video, ","))
	logging.Debug("  AUDIO_EXT:          %s", strings.Join(c.Extensions.Audio, ","))
	logging.Debug("  ROOT_BOUNDARY:      %v", c.RootBoundary)
	logging.Debug("  SCAN_WORKERS:       %d", c.ScanWorkers)
	logging.Debug("  TRANSFER_MAX_BYTES: %d", c.TransferMaxBytes)
	logging.Debug("  METRICS_ADDR:       %s", c.MetricsAddr)
	logging.Debug("  WATCH:              %v", c.Watch)
	logging.Debug("  LOG_LEVEL:          %s", logging.GetLevel())
}
