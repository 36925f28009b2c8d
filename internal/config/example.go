package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planche-electronique/cepo/internal/constants"
)

// Example returns a sample configuration with two airfields.
func Example() Configuration {
	return Configuration{
		Port:                 constants.DefaultPort,
		AppEnv:               "production",
		LogLevel:             "info",
		DataDir:              DefaultDataDir(),
		SyncInterval:         constants.DefaultSyncInterval,
		MaxRequestsPerClient: constants.DefaultMaxRequestsPerClient,
		CORSOrigins:          []string{"*"},
		Feed: FeedConfig{
			BaseURL:           constants.DefaultFeedBaseURL,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			CacheTTL:          30 * time.Second,
		},
		Archive: ArchiveConfig{Enabled: false, Driver: "sqlite"},

		PermanentPilots:      []string{"Steve Jobs", "Jony Ive"},
		PermanentWinchPilots: []string{"Steve Jobs", "Jony Ive"},
		PermanentTowPilots:   []string{"Steve Jobs", "Jony Ive"},
		PermanentWinches:     []string{"brown", "orange"},
		PermanentAerotows:    []string{"cyan", "clear green"},
		Immatriculations:     []string{"F-CVIP", "F-CNON", "F-CLMT"},

		Airfields: []AirfieldConfig{
			{
				OACI:             "LFLE",
				Pilots:           []string{"Walt Disney", "Roy Disney"},
				WinchPilots:      []string{"Walt Disney", "Roy Disney"},
				TowPilots:        []string{"Walt Disney", "Roy Disney"},
				Winches:          []string{"yellow", "green"},
				Aerotows:         []string{"red", "blue"},
				Immatriculations: []string{"F-CEJU", "F-CECY", "F-CBAR", "F-CHFL"},
			},
			{
				OACI:             "LFLB",
				Pilots:           []string{"Thomas Edison", "Pablo Picasso"},
				WinchPilots:      []string{"Thomas Edison", "Pablo Picasso"},
				TowPilots:        []string{"Thomas Edison", "Pablo Picasso"},
				Winches:          []string{"purple", "pink"},
				Aerotows:         []string{"white", "black"},
				Immatriculations: []string{"F-CEJU", "F-CDYA", "F-CHBY", "F-CLIN", "F-CGCZ", "F-CHFM"},
				MonitoredDays:    []string{"2024-06-10"},
			},
		},
	}
}

// WriteExample writes the example configuration as YAML to path.
func WriteExample(path string) error {
	data, err := MarshalYAML(Example())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}

// MarshalYAML encodes cfg with durations written as "300s" rather than nanoseconds.
func MarshalYAML(cfg Configuration) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	doc["sync_interval"] = cfg.SyncInterval.String()
	if feed, ok := doc["feed"].(map[string]any); ok {
		feed["timeout"] = cfg.Feed.Timeout.String()
		feed["cache_ttl"] = cfg.Feed.CacheTTL.String()
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
