package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/transport"
	"stuhfl_go/sdk"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, transport.DriverBugst, cfg.Driver)
	require.Equal(t, 1, cfg.Antenna)
	require.True(t, cfg.FreqHopping)
	require.Equal(t, "EU", cfg.Profile)
	require.Equal(t, "medium", cfg.TuneAlgorithm)
	require.Equal(t, sdk.DefaultTagListSize, cfg.TagListSize)
	require.Equal(t, ":8099", cfg.HTTPAddr)
	require.Empty(t, cfg.MQTTHost)
}

func TestLoadEnvironmentAndClamps(t *testing.T) {
	t.Setenv("STUHFL_PORT", " /dev/ttyUSB0 ")
	t.Setenv("STUHFL_DRIVER", "TARM")
	t.Setenv("STUHFL_ANTENNA", "3")
	t.Setenv("STUHFL_HOPPING", "off")
	t.Setenv("STUHFL_PROFILE", "us")
	t.Setenv("STUHFL_TUNE", "Exact")
	t.Setenv("STUHFL_TIMEOUT_MS", "5")
	t.Setenv("STUHFL_ROUND_DELAY_MS", "99999")
	t.Setenv("STUHFL_TAG_LIST_SIZE", "0")
	t.Setenv("STUHFL_HTTP_ENABLED", "no")
	t.Setenv("STUHFL_MQTT_PORT", "70000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", cfg.Port)
	require.Equal(t, transport.DriverTarm, cfg.Driver)
	require.Equal(t, 3, cfg.Antenna)
	require.False(t, cfg.FreqHopping)
	require.Equal(t, "US", cfg.Profile)
	require.Equal(t, "exact", cfg.TuneAlgorithm)
	require.Equal(t, 100*time.Millisecond, cfg.Timeout)
	require.Equal(t, 0xFFFF*time.Millisecond, cfg.RoundDelay)
	require.Equal(t, sdk.DefaultTagListSize, cfg.TagListSize)
	require.Empty(t, cfg.HTTPAddr)
	require.Equal(t, 1883, cfg.MQTTPort)

	setup := cfg.Gen2Setup()
	require.Equal(t, sdk.Antenna3, setup.Antenna)
	require.Equal(t, sdk.ProfileUSA, setup.Profile)
	require.Equal(t, sdk.TuneExact, setup.Algorithm)
	require.False(t, setup.FreqHopping)

	require.Equal(t, transport.DriverTarm, cfg.TransportOptions().Driver)
}

func TestLoadRejectsUnknownNames(t *testing.T) {
	t.Setenv("STUHFL_DRIVER", "usb")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STUHFL_DRIVER", "sim")
	t.Setenv("STUHFL_ANTENNA", "5")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("STUHFL_ANTENNA", "1")
	t.Setenv("STUHFL_PROFILE", "mars")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("STUHFL_PROFILE", "EU")
	t.Setenv("STUHFL_TUNE", "quick")
	_, err = Load()
	require.Error(t, err)
}

func TestRunnerOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Rounds = 5
	cfg.RoundDelay = 20 * time.Millisecond
	cfg.TagListSize = 16
	opts := cfg.RunnerOptions()
	require.Equal(t, sdk.ProtocolGen2, opts.Protocol)
	require.Equal(t, uint32(5), opts.Option.RoundCount)
	require.Equal(t, 20*time.Millisecond, opts.Option.InventoryDelay)
	require.Equal(t, 16, opts.TagListSize)
}

func TestSimulatedDriverKeepsSerialDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Driver = DriverSim
	require.NoError(t, cfg.Normalize())
	require.True(t, cfg.Simulated())
	require.Equal(t, transport.DriverBugst, cfg.TransportOptions().Driver)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "# reader\nexport STUHFL_TEST_A=\"quoted value\"\nSTUHFL_TEST_B='single'\nbroken line\nSTUHFL_TEST_C=kept\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("STUHFL_TEST_C", "from-env")
	t.Setenv("STUHFL_TEST_A", "")
	require.NoError(t, os.Unsetenv("STUHFL_TEST_A"))
	t.Setenv("STUHFL_TEST_B", "")
	require.NoError(t, os.Unsetenv("STUHFL_TEST_B"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "quoted value", os.Getenv("STUHFL_TEST_A"))
	require.Equal(t, "single", os.Getenv("STUHFL_TEST_B"))
	require.Equal(t, "from-env", os.Getenv("STUHFL_TEST_C"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, LoadDotEnv(""))
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stuhfl.yaml")
	body := `reader:
  port: /dev/ttyACM1
  antenna: 2
  hopping: false
  tune: fast
inventory:
  rounds: 10
  delay_ms: 250
mqtt:
  host: broker.local
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg := Defaults()
	require.NoError(t, LoadFile(path, &cfg))
	require.Equal(t, "/dev/ttyACM1", cfg.Port)
	require.Equal(t, 2, cfg.Antenna)
	require.False(t, cfg.FreqHopping)
	require.Equal(t, "fast", cfg.TuneAlgorithm)
	require.Equal(t, 10, cfg.Rounds)
	require.Equal(t, 250*time.Millisecond, cfg.RoundDelay)
	require.Equal(t, "broker.local", cfg.MQTTHost)
	require.Equal(t, "EU", cfg.Profile)
	require.Equal(t, "stuhfl/tags", cfg.MQTTTopic)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stuhfl.toml")
	body := `[reader]
driver = "tcp"
port = "10.0.0.5:4001"
profile = "jp"

[http]
addr = "127.0.0.1:9000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg := Defaults()
	require.NoError(t, LoadFile(path, &cfg))
	require.Equal(t, transport.DriverTCP, cfg.Driver)
	require.Equal(t, "10.0.0.5:4001", cfg.Port)
	require.Equal(t, "JP", cfg.Profile)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	require.True(t, cfg.FreqHopping)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := Defaults()

	require.Error(t, LoadFile(filepath.Join(dir, "absent.yaml"), &cfg))

	ini := filepath.Join(dir, "stuhfl.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1"), 0o600))
	require.Error(t, LoadFile(ini, &cfg))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("reader:\n  antenna: 9\n"), 0o600))
	require.Error(t, LoadFile(bad, &cfg))
}

func TestResolveLayersSources(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STUHFL_ROUNDS=7\nSTUHFL_ANTENNA=2\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("STUHFL_ROUNDS")
		_ = os.Unsetenv("STUHFL_ANTENNA")
	})
	filePath := filepath.Join(dir, "stuhfl.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte("reader:\n  antenna: 4\n"), 0o600))

	cfg, err := Resolve(envPath, filePath)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Rounds)
	require.Equal(t, 4, cfg.Antenna)

	_, err = Resolve("", filepath.Join(dir, "absent.toml"))
	require.Error(t, err)
}
