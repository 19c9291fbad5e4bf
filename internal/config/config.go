package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/referee-designation/pkg/core/designation"
)

// Notification channels for designation offers
const (
	ChannelEmail = "email"
	ChannelNATS  = "nats"
	ChannelNone  = "none"
)

// DesignationFreeze marks recurring dates the engine must not designate for,
// e.g. federation holidays
type DesignationFreeze struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Reason string `yaml:"reason,omitempty"`
}

// Option parses the freeze rule. A rule may carry its own DTSTART, either inline
// ("DTSTART=20260103;FREQ=WEEKLY;INTERVAL=2") or as a leading "DTSTART:" line.
// Rules with INTERVAL > 1 or COUNT depend on where they start, so they must.
func (f DesignationFreeze) Option() (*rrule.ROption, error) {
	option, err := rrule.StrToROption(f.RRule)
	if err != nil {
		return nil, err
	}
	if option.Dtstart.IsZero() && (option.Interval > 1 || option.Count > 0) {
		return nil, fmt.Errorf("rules with INTERVAL or COUNT need a DTSTART")
	}
	if _, err := rrule.NewRRule(*option); err != nil {
		return nil, err
	}
	return option, nil
}

// Config represents the application configuration
type Config struct {
	Federation string `yaml:"federation" validate:"required"`

	DrivingRadiusKm float64 `yaml:"drivingRadiusKm" validate:"gt=0"`
	WalkingRadiusKm float64 `yaml:"walkingRadiusKm" validate:"gt=0,ltefield=DrivingRadiusKm"`
	MinLeadDays     int     `yaml:"minLeadDays" validate:"min=0"`
	// WorkloadWindowDays is how far either side of a match a refill looks when
	// counting referee workload
	WorkloadWindowDays int `yaml:"workloadWindowDays" validate:"min=0"`
	// ResponseTimeoutHours turns unanswered offers into rejections; 0 disables it
	ResponseTimeoutHours int `yaml:"responseTimeoutHours" validate:"min=0"`

	NotificationChannel string `yaml:"notificationChannel" validate:"required,oneof=email nats none"`
	GmailUserID         string `yaml:"gmailUserID,omitempty" validate:"required_if=NotificationChannel email"`
	GmailSender         string `yaml:"gmailSender,omitempty"`

	DesignationSheetID string              `yaml:"designationSheetID,omitempty"`
	DesignationFreezes []DesignationFreeze `yaml:"designationFreezes,omitempty" validate:"dive"`
}

// Engine returns the thresholds a designation run is configured with
func (c *Config) Engine() designation.Config {
	return designation.Config{
		Travel: designation.TravelPolicy{
			DrivingRadiusKm: c.DrivingRadiusKm,
			WalkingRadiusKm: c.WalkingRadiusKm,
		},
		MinLeadDays: c.MinLeadDays,
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates designation_config.<env>.yaml
// from the current directory or the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findFile(envFileName("designation_config", env, "yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, freeze := range cfg.DesignationFreezes {
		if _, err := freeze.Option(); err != nil {
			return fmt.Errorf("invalid rrule in designationFreezes[%d]: %w", i, err)
		}
	}

	return nil
}

// envFileName builds "<base>.<env>.<ext>", or "<base>.<ext>" without an env
func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// findFile looks for name in the current directory, then in the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
