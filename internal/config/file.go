package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// fileConfig is the on-disk shape. Nil fields keep the current value.
type fileConfig struct {
	Reader struct {
		Port        *string `yaml:"port" toml:"port"`
		Driver      *string `yaml:"driver" toml:"driver"`
		Baud        *int    `yaml:"baud" toml:"baud"`
		TimeoutMS   *int    `yaml:"timeout_ms" toml:"timeout_ms"`
		Antenna     *int    `yaml:"antenna" toml:"antenna"`
		FreqHopping *bool   `yaml:"hopping" toml:"hopping"`
		SingleTag   *bool   `yaml:"single_tag" toml:"single_tag"`
		Profile     *string `yaml:"profile" toml:"profile"`
		Tune        *string `yaml:"tune" toml:"tune"`
	} `yaml:"reader" toml:"reader"`
	Inventory struct {
		Rounds      *int  `yaml:"rounds" toml:"rounds"`
		DelayMS     *int  `yaml:"delay_ms" toml:"delay_ms"`
		TagListSize *int  `yaml:"tag_list_size" toml:"tag_list_size"`
		RetrySec    *int  `yaml:"retry_sec" toml:"retry_sec"`
		AutoStart   *bool `yaml:"auto_start" toml:"auto_start"`
	} `yaml:"inventory" toml:"inventory"`
	HTTP struct {
		Addr *string `yaml:"addr" toml:"addr"`
	} `yaml:"http" toml:"http"`
	IPC struct {
		Socket *string `yaml:"socket" toml:"socket"`
	} `yaml:"ipc" toml:"ipc"`
	MQTT struct {
		Host      *string `yaml:"host" toml:"host"`
		Port      *int    `yaml:"port" toml:"port"`
		Topic     *string `yaml:"topic" toml:"topic"`
		ClientID  *string `yaml:"client_id" toml:"client_id"`
		FirstOnly *bool   `yaml:"first_only" toml:"first_only"`
	} `yaml:"mqtt" toml:"mqtt"`
}

// LoadFile overlays a YAML (.yaml, .yml) or TOML (.toml) file onto cfg and
// normalizes the result.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &fc)
	case ".toml":
		err = toml.Unmarshal(raw, &fc)
	default:
		return errors.Errorf("unsupported config file %q", filepath.Base(path))
	}
	if err != nil {
		return errors.Wrapf(err, "parse %s", filepath.Base(path))
	}

	fc.apply(cfg)
	return cfg.Normalize()
}

// Resolve layers the dotenv file, the environment and an optional config
// file, in that order. Empty paths are skipped.
func Resolve(envFile, file string) (Config, error) {
	if envFile != "" {
		if err := LoadDotEnv(envFile); err != nil {
			return Config{}, err
		}
	}
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	if file != "" {
		if err := LoadFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.Port, fc.Reader.Port)
	setString(&cfg.Driver, fc.Reader.Driver)
	setInt(&cfg.Baud, fc.Reader.Baud)
	setMillis(&cfg.Timeout, fc.Reader.TimeoutMS)
	setInt(&cfg.Antenna, fc.Reader.Antenna)
	setBool(&cfg.FreqHopping, fc.Reader.FreqHopping)
	setBool(&cfg.SingleTag, fc.Reader.SingleTag)
	setString(&cfg.Profile, fc.Reader.Profile)
	setString(&cfg.TuneAlgorithm, fc.Reader.Tune)

	setInt(&cfg.Rounds, fc.Inventory.Rounds)
	setMillis(&cfg.RoundDelay, fc.Inventory.DelayMS)
	setInt(&cfg.TagListSize, fc.Inventory.TagListSize)
	if fc.Inventory.RetrySec != nil {
		cfg.RetryDelay = time.Duration(*fc.Inventory.RetrySec) * time.Second
	}
	setBool(&cfg.AutoStart, fc.Inventory.AutoStart)

	setString(&cfg.HTTPAddr, fc.HTTP.Addr)
	setString(&cfg.IPCSocket, fc.IPC.Socket)
	setString(&cfg.MQTTHost, fc.MQTT.Host)
	setInt(&cfg.MQTTPort, fc.MQTT.Port)
	setString(&cfg.MQTTTopic, fc.MQTT.Topic)
	setString(&cfg.MQTTClientID, fc.MQTT.ClientID)
	setBool(&cfg.MQTTFirstOnly, fc.MQTT.FirstOnly)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setMillis(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}
