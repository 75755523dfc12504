package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

const EnvConfigPath = "CLOCKD_CONFIG"

type (
	Config struct {
		Storage   `yaml:"storage"`
		Log       `yaml:"log"`
		Alarm     `yaml:"alarm"`
		Scheduler `yaml:"scheduler"`
	}

	Storage struct {
		DBPath          string        `yaml:"db_path"           env:"CLOCKD_DB_PATH"           env-default:"~/.clockd.db"`
		FeedIdleTimeout time.Duration `yaml:"feed_idle_timeout" env:"CLOCKD_FEED_IDLE_TIMEOUT" env-default:"5s"`
	}

	Log struct {
		Level  string `yaml:"level"  env:"CLOCKD_LOG_LEVEL"  env-default:"info"`
		Format string `yaml:"format" env:"CLOCKD_LOG_FORMAT" env-default:"console"`
		File   string `yaml:"file"   env:"CLOCKD_LOG_FILE"   env-default:"~/.clockd.log"`
	}

	Alarm struct {
		SnoozeMinutes        int  `yaml:"snooze_minutes"        env:"CLOCKD_SNOOZE_MINUTES"        env-default:"10"`
		DesktopNotifications bool `yaml:"desktop_notifications" env:"CLOCKD_DESKTOP_NOTIFICATIONS" env-default:"false"`
		Sound                bool `yaml:"sound"                 env:"CLOCKD_SOUND"                 env-default:"true"`
	}

	Scheduler struct {
		ExactAlarms bool          `yaml:"exact_alarms" env:"CLOCKD_EXACT_ALARMS"      env-default:"true"`
		Buffer      int           `yaml:"buffer"       env:"CLOCKD_SCHEDULER_BUFFER"  env-default:"64"`
		WakeTimeout time.Duration `yaml:"wake_timeout" env:"CLOCKD_WAKE_TIMEOUT"      env-default:"30s"`
	}
)

func Default() Config {
	return Config{
		Storage:   Storage{DBPath: "~/.clockd.db", FeedIdleTimeout: 5 * time.Second},
		Log:       Log{Level: "info", Format: "console", File: "~/.clockd.log"},
		Alarm:     Alarm{SnoozeMinutes: 10, Sound: true},
		Scheduler: Scheduler{ExactAlarms: true, Buffer: 64, WakeTimeout: 30 * time.Second},
	}
}

// Load reads the optional YAML file at path (falling back to $CLOCKD_CONFIG)
// and then applies environment overrides. Paths beginning with ~ are expanded.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	return cfg.normalize()
}

func (c Config) SnoozeDuration() time.Duration {
	return time.Duration(c.SnoozeMinutes) * time.Minute
}

// Usage describes every supported environment variable.
func Usage() string {
	header := "clockd environment variables:"
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, &header)
	if err != nil {
		return header
	}
	return text
}

func (c Config) normalize() (Config, error) {
	def := Default()
	if c.SnoozeMinutes <= 0 {
		c.SnoozeMinutes = def.SnoozeMinutes
	}
	if c.Buffer <= 0 {
		c.Buffer = def.Buffer
	}
	if c.FeedIdleTimeout <= 0 {
		c.FeedIdleTimeout = def.FeedIdleTimeout
	}
	if c.WakeTimeout <= 0 {
		c.WakeTimeout = def.WakeTimeout
	}

	var err error
	if c.DBPath, err = homedir.Expand(c.DBPath); err != nil {
		return Config{}, fmt.Errorf("config: db path: %w", err)
	}
	if c.File, err = homedir.Expand(c.File); err != nil {
		return Config{}, fmt.Errorf("config: log file: %w", err)
	}
	return c, nil
}
