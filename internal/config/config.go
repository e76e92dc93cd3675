package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stuhfl_go/internal/transport"
	"stuhfl_go/sdk"
)

// DriverSim runs against the built-in virtual reader instead of a port.
const DriverSim = "sim"

type Config struct {
	Port          string
	Driver        string
	Baud          int
	Timeout       time.Duration
	Antenna       int
	FreqHopping   bool
	SingleTag     bool
	Profile       string
	TuneAlgorithm string
	Rounds        int
	RoundDelay    time.Duration
	TagListSize   int
	RetryDelay    time.Duration
	AutoStart     bool
	HTTPAddr      string
	IPCSocket     string
	MQTTHost      string
	MQTTPort      int
	MQTTTopic     string
	MQTTClientID  string
	MQTTFirstOnly bool
}

func Defaults() Config {
	return Config{
		Driver:        transport.DriverBugst,
		Baud:          transport.DefaultBaud,
		Timeout:       2 * time.Second,
		Antenna:       1,
		FreqHopping:   true,
		Profile:       "EU",
		TuneAlgorithm: sdk.TuneMedium.String(),
		TagListSize:   sdk.DefaultTagListSize,
		RetryDelay:    2 * time.Second,
		HTTPAddr:      ":8099",
		IPCSocket:     "/tmp/stuhfl.sock",
		MQTTPort:      1883,
		MQTTTopic:     "stuhfl/tags",
		MQTTClientID:  "stuhfl-daemon",
		MQTTFirstOnly: true,
	}
}

// Load resolves STUHFL_* environment variables over the defaults.
func Load() (Config, error) {
	def := Defaults()
	cfg := Config{
		Port:          strings.TrimSpace(os.Getenv("STUHFL_PORT")),
		Driver:        envOr("STUHFL_DRIVER", def.Driver),
		Baud:          envInt("STUHFL_BAUD", def.Baud),
		Timeout:       envDurationMS("STUHFL_TIMEOUT_MS", int(def.Timeout/time.Millisecond)),
		Antenna:       envInt("STUHFL_ANTENNA", def.Antenna),
		FreqHopping:   envBool("STUHFL_HOPPING", def.FreqHopping),
		SingleTag:     envBool("STUHFL_SINGLE_TAG", def.SingleTag),
		Profile:       envOr("STUHFL_PROFILE", def.Profile),
		TuneAlgorithm: envOr("STUHFL_TUNE", def.TuneAlgorithm),
		Rounds:        envInt("STUHFL_ROUNDS", def.Rounds),
		RoundDelay:    envDurationMS("STUHFL_ROUND_DELAY_MS", 0),
		TagListSize:   envInt("STUHFL_TAG_LIST_SIZE", def.TagListSize),
		RetryDelay:    envDurationSec("STUHFL_RETRY_SEC", int(def.RetryDelay/time.Second)),
		AutoStart:     envBool("STUHFL_AUTO_START", def.AutoStart),
		HTTPAddr:      envOr("STUHFL_HTTP_ADDR", def.HTTPAddr),
		IPCSocket:     envOr("STUHFL_IPC_SOCKET", def.IPCSocket),
		MQTTHost:      strings.TrimSpace(os.Getenv("STUHFL_MQTT_HOST")),
		MQTTPort:      envInt("STUHFL_MQTT_PORT", def.MQTTPort),
		MQTTTopic:     envOr("STUHFL_MQTT_TOPIC", def.MQTTTopic),
		MQTTClientID:  envOr("STUHFL_MQTT_CLIENT_ID", def.MQTTClientID),
		MQTTFirstOnly: envBool("STUHFL_MQTT_FIRST_ONLY", def.MQTTFirstOnly),
	}
	if !envBool("STUHFL_HTTP_ENABLED", true) {
		cfg.HTTPAddr = ""
	}
	if !envBool("STUHFL_IPC_ENABLED", true) {
		cfg.IPCSocket = ""
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize clamps numeric settings and rejects unknown names.
func (c *Config) Normalize() error {
	c.Port = strings.TrimSpace(c.Port)
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	c.Profile = strings.ToUpper(strings.TrimSpace(c.Profile))
	c.TuneAlgorithm = strings.ToLower(strings.TrimSpace(c.TuneAlgorithm))
	switch c.Driver {
	case transport.DriverBugst, transport.DriverTarm, transport.DriverTCP, DriverSim:
	case "":
		c.Driver = transport.DriverBugst
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Antenna < 1 || c.Antenna > 4 {
		return fmt.Errorf("antenna %d out of range 1..4", c.Antenna)
	}
	if _, err := sdk.ParseProfile(c.Profile); err != nil {
		return err
	}
	if _, err := sdk.ParseTuningAlgorithm(c.TuneAlgorithm); err != nil {
		return err
	}
	if c.Baud <= 0 {
		c.Baud = transport.DefaultBaud
	}
	if c.Timeout < 100*time.Millisecond {
		c.Timeout = 100 * time.Millisecond
	}
	if c.Rounds < 0 {
		c.Rounds = 0
	}
	if c.RoundDelay < 0 {
		c.RoundDelay = 0
	}
	if c.RoundDelay > 0xFFFF*time.Millisecond {
		c.RoundDelay = 0xFFFF * time.Millisecond
	}
	if c.TagListSize < 1 {
		c.TagListSize = sdk.DefaultTagListSize
	}
	if c.TagListSize > sdk.MaxTagListSize {
		c.TagListSize = sdk.MaxTagListSize
	}
	if c.RetryDelay < 500*time.Millisecond {
		c.RetryDelay = 2 * time.Second
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		c.MQTTPort = 1883
	}
	return nil
}

func (c Config) Simulated() bool {
	return c.Driver == DriverSim
}

func (c Config) TransportOptions() transport.Options {
	opts := transport.DefaultOptions()
	if c.Driver != DriverSim {
		opts.Driver = c.Driver
	}
	opts.Baud = c.Baud
	return opts
}

// Gen2Setup maps the reader settings onto the Gen2 setup sequence.
// Normalize must have accepted the config.
func (c Config) Gen2Setup() sdk.Gen2Setup {
	profile, _ := sdk.ParseProfile(c.Profile)
	algo, _ := sdk.ParseTuningAlgorithm(c.TuneAlgorithm)
	return sdk.Gen2Setup{
		Antenna:     sdk.Antenna(c.Antenna),
		SingleTag:   c.SingleTag,
		FreqHopping: c.FreqHopping,
		Algorithm:   algo,
		Profile:     profile,
	}
}

func (c Config) RunnerOptions() sdk.RunnerOptions {
	opt := sdk.DefaultInventoryOption()
	opt.RoundCount = uint32(c.Rounds)
	opt.InventoryDelay = c.RoundDelay
	return sdk.RunnerOptions{
		Protocol:    sdk.ProtocolGen2,
		Option:      opt,
		TagListSize: c.TagListSize,
	}
}

func envOr(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envDurationSec(key string, fallbackSec int) time.Duration {
	return time.Duration(envInt(key, fallbackSec)) * time.Second
}

func envDurationMS(key string, fallbackMS int) time.Duration {
	return time.Duration(envInt(key, fallbackMS)) * time.Millisecond
}
