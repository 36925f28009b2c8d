package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

const sampleYAML = `
port: 8081
data_dir: /tmp/cepo-test
sync_interval: 60s
permanent_pilots: [Steve Jobs]
immatriculations: [F-CVIP]
feed:
  cache_ttl: 5s
airfields:
  - oaci: LFLE
    pilots: [Walt Disney, Steve Jobs]
    immatriculations: [F-CEJU, F-CVIP]
  - oaci: LFLB
    monitored_days: ["2024-06-10"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cepo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "/tmp/cepo-test", cfg.DataDir)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
	assert.Equal(t, 10, cfg.MaxRequestsPerClient)
	assert.Equal(t, 5*time.Second, cfg.Feed.CacheTTL)
	assert.Equal(t, "http://flightbook.glidernet.org/api", cfg.Feed.BaseURL)
	require.Len(t, cfg.Airfields, 2)
	assert.Equal(t, "LFLE", cfg.DefaultAirfield())
	assert.Equal(t, []string{"LFLE", "LFLB"}, cfg.AirfieldCodes())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CEPO_PORT", "9090")
	t.Setenv("CEPO_FEED_BASE_URL", "http://ogn.test/api")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://ogn.test/api", cfg.Feed.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"no airfields":   "port: 8080\n",
		"duplicate oaci": "airfields:\n  - oaci: LFLE\n  - oaci: LFLE\n",
		"empty oaci":     "airfields:\n  - pilots: [a]\n",
		"bad port":       "port: 70000\nairfields:\n  - oaci: LFLE\n",
		"bad day":        "airfields:\n  - oaci: LFLE\n    monitored_days: [tomorrow]\n",
		"bad driver":     "archive:\n  enabled: true\n  driver: oracle\nairfields:\n  - oaci: LFLE\n",
		"zero interval":  "sync_interval: 0s\nairfields:\n  - oaci: LFLE\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), err.Error())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestIsMonitored(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	always, _ := cfg.Airfield("LFLE")
	sometimes, _ := cfg.Airfield("LFLB")

	day := entities.Day{Year: 2024, Month: time.June, Day: 10}
	other := entities.Day{Year: 2024, Month: time.June, Day: 11}
	assert.True(t, always.IsMonitored(other))
	assert.True(t, sometimes.IsMonitored(day))
	assert.False(t, sometimes.IsMonitored(other))
}

func TestInfosAndRegistrations(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	infos, ok := cfg.Infos("LFLE")
	require.True(t, ok)
	assert.Equal(t, []string{"Steve Jobs", "Walt Disney"}, infos.Pilots)
	assert.Equal(t, []string{"F-CEJU", "F-CVIP"}, infos.Immatriculations)
	assert.Empty(t, infos.Winches)

	_, ok = cfg.Infos("XXXX")
	assert.False(t, ok)

	regs := cfg.Registrations()
	assert.Equal(t, []string{"F-CVIP"}, regs["LFLB"])
}

func TestWriteExample_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cepo.yaml")
	require.NoError(t, WriteExample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sync_interval: 5m0s")

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Example()
	assert.Equal(t, want.Airfields, cfg.Airfields)
	assert.Equal(t, want.SyncInterval, cfg.SyncInterval)
	assert.Equal(t, want.Feed, cfg.Feed)
}

func TestDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultConfigPath()))
}
