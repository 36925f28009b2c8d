package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const envPrefix = "CEPO"

// Configuration is the whole server configuration.
type Configuration struct {
	Port                 int           `mapstructure:"port" yaml:"port"`
	AppEnv               string        `mapstructure:"app_env" yaml:"app_env"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
	DataDir              string        `mapstructure:"data_dir" yaml:"data_dir"`
	SyncInterval         time.Duration `mapstructure:"sync_interval" yaml:"sync_interval"`
	MaxRequestsPerClient int           `mapstructure:"max_requests_per_client" yaml:"max_requests_per_client"`
	CORSOrigins          []string      `mapstructure:"cors_origins" yaml:"cors_origins"`

	Feed    FeedConfig    `mapstructure:"feed" yaml:"feed"`
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`

	PermanentPilots      []string `mapstructure:"permanent_pilots" yaml:"permanent_pilots"`
	PermanentWinchPilots []string `mapstructure:"permanent_winch_pilots" yaml:"permanent_winch_pilots"`
	PermanentTowPilots   []string `mapstructure:"permanent_tow_pilots" yaml:"permanent_tow_pilots"`
	PermanentWinches     []string `mapstructure:"permanent_winches" yaml:"permanent_winches"`
	PermanentAerotows    []string `mapstructure:"permanent_aerotows" yaml:"permanent_aerotows"`
	// Immatriculations are tracked at every airfield.
	Immatriculations []string `mapstructure:"immatriculations" yaml:"immatriculations"`

	Airfields []AirfieldConfig `mapstructure:"airfields" yaml:"airfields"`
}

type FeedConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Driver  string `mapstructure:"driver" yaml:"driver"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// AirfieldConfig describes one monitored airfield.
type AirfieldConfig struct {
	OACI             string   `mapstructure:"oaci" yaml:"oaci"`
	Pilots           []string `mapstructure:"pilots" yaml:"pilots"`
	WinchPilots      []string `mapstructure:"winch_pilots" yaml:"winch_pilots"`
	TowPilots        []string `mapstructure:"tow_pilots" yaml:"tow_pilots"`
	Winches          []string `mapstructure:"winches" yaml:"winches"`
	Aerotows         []string `mapstructure:"aerotows" yaml:"aerotows"`
	Immatriculations []string `mapstructure:"immatriculations" yaml:"immatriculations"`
	// MonitoredDays lists YYYY-MM-DD dates; empty means every day.
	MonitoredDays []string `mapstructure:"monitored_days" yaml:"monitored_days,omitempty"`
}

// Infos are the merged pick lists a client offers for one airfield.
type Infos struct {
	Airfield         string   `json:"airfield"`
	Pilots           []string `json:"pilots"`
	WinchPilots      []string `json:"winch_pilots"`
	TowPilots        []string `json:"tow_pilots"`
	Winches          []string `json:"winches"`
	Aerotows         []string `json:"aerotows"`
	Immatriculations []string `json:"immatriculations"`
}

// DefaultDataDir follows the XDG base directory layout.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cepo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cepo-data")
	}
	return filepath.Join(home, ".local", "share", "cepo")
}

// DefaultConfigPath is config.yaml in the user's configuration directory.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "cepo", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", constants.DefaultPort)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("sync_interval", constants.DefaultSyncInterval)
	v.SetDefault("max_requests_per_client", constants.DefaultMaxRequestsPerClient)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("feed.base_url", constants.DefaultFeedBaseURL)
	v.SetDefault("feed.timeout", 10*time.Second)
	v.SetDefault("feed.requests_per_second", 1.0)
	v.SetDefault("feed.cache_ttl", 30*time.Second)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.driver", "sqlite")
	v.SetDefault("archive.dsn", "")
}

// Load reads the YAML file at path (optional), then CEPO_* environment
// variables, then validates. A .env file in the working directory is loaded first when present.
func Load(path string) (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Archive.Enabled && cfg.Archive.DSN == "" && cfg.Archive.Driver == "sqlite" {
		cfg.Archive.DSN = filepath.Join(cfg.DataDir, "archive.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for values the server cannot run with.
func (c *Configuration) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return invalid("port %d out of range", c.Port)
	}
	if c.SyncInterval <= 0 {
		return invalid("sync_interval must be positive")
	}
	if c.MaxRequestsPerClient <= 0 {
		return invalid("max_requests_per_client must be positive")
	}
	if c.DataDir == "" {
		return invalid("data_dir is empty")
	}
	if c.Archive.Enabled && c.Archive.Driver != "sqlite" && c.Archive.Driver != "postgres" {
		return invalid("archive driver %q not supported", c.Archive.Driver)
	}
	if len(c.Airfields) == 0 {
		return invalid("no airfield configured")
	}

	seen := make(map[string]struct{}, len(c.Airfields))
	for i, a := range c.Airfields {
		if strings.TrimSpace(a.OACI) == "" {
			return invalid("airfield %d has no oaci code", i)
		}
		if _, dup := seen[a.OACI]; dup {
			return invalid("airfield %s configured twice", a.OACI)
		}
		seen[a.OACI] = struct{}{}
		for _, d := range a.MonitoredDays {
			if _, err := entities.ParseDay(d); err != nil {
				return invalid("airfield %s: monitored day %q: %v", a.OACI, d, err)
			}
		}
	}
	return nil
}

// Airfield returns the configuration of oaci.
func (c *Configuration) Airfield(oaci string) (AirfieldConfig, bool) {
	i := slices.IndexFunc(c.Airfields, func(a AirfieldConfig) bool { return a.OACI == oaci })
	if i < 0 {
		return AirfieldConfig{}, false
	}
	return c.Airfields[i], true
}

// DefaultAirfield is the first configured airfield.
func (c *Configuration) DefaultAirfield() string {
	if len(c.Airfields) == 0 {
		return ""
	}
	return c.Airfields[0].OACI
}

func (c *Configuration) AirfieldCodes() []string {
	codes := make([]string, 0, len(c.Airfields))
	for _, a := range c.Airfields {
		codes = append(codes, a.OACI)
	}
	return codes
}

// IsMonitored reports whether the airfield should be polled on day.
func (a AirfieldConfig) IsMonitored(day entities.Day) bool {
	if len(a.MonitoredDays) == 0 {
		return true
	}
	for _, s := range a.MonitoredDays {
		if d, err := entities.ParseDay(s); err == nil && d == day {
			return true
		}
	}
	return false
}

// Registrations returns, per airfield, the airfield's and the global registrations.
func (c *Configuration) Registrations() map[string][]string {
	regs := make(map[string][]string, len(c.Airfields))
	for _, a := range c.Airfields {
		regs[a.OACI] = common.MergeUnique(a.Immatriculations, c.Immatriculations)
	}
	return regs
}

// Infos merges the permanent lists with the airfield's own.
func (c *Configuration) Infos(oaci string) (Infos, bool) {
	a, ok := c.Airfield(oaci)
	if !ok {
		return Infos{}, false
	}
	return Infos{
		Airfield:         a.OACI,
		Pilots:           common.MergeUnique(c.PermanentPilots, a.Pilots),
		WinchPilots:      common.MergeUnique(c.PermanentWinchPilots, a.WinchPilots),
		TowPilots:        common.MergeUnique(c.PermanentTowPilots, a.TowPilots),
		Winches:          common.MergeUnique(c.PermanentWinches, a.Winches),
		Aerotows:         common.MergeUnique(c.PermanentAerotows, a.Aerotows),
		Immatriculations: common.MergeUnique(a.Immatriculations, c.Immatriculations),
	}, true
}
