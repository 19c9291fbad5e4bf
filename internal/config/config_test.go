package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Federation:           "Federación Madrileña",
		DrivingRadiusKm:      80,
		WalkingRadiusKm:      15,
		MinLeadDays:          7,
		WorkloadWindowDays:   14,
		ResponseTimeoutHours: 48,
		NotificationChannel:  ChannelEmail,
		GmailUserID:          "designations@example.com",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.DesignationFreezes = []DesignationFreeze{
		{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Reason: "Christmas"},
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_NATSChannelNeedsNoGmail(t *testing.T) {
	cfg := validConfig()
	cfg.NotificationChannel = ChannelNATS
	cfg.GmailUserID = ""

	assert.NoError(t, Validate(cfg))
}

func TestValidate_EmailChannelRequiresGmailUser(t *testing.T) {
	cfg := validConfig()
	cfg.GmailUserID = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_UnknownChannel(t *testing.T) {
	cfg := validConfig()
	cfg.NotificationChannel = "carrier-pigeon"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_WalkingRadiusAboveDriving(t *testing.T) {
	cfg := validConfig()
	cfg.WalkingRadiusKm = 100

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_NonPositiveRadius(t *testing.T) {
	cfg := validConfig()
	cfg.DrivingRadiusKm = 0

	assert.Error(t, Validate(cfg))
}

func TestValidate_NegativeLeadDays(t *testing.T) {
	cfg := validConfig()
	cfg.MinLeadDays = -1

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.DesignationFreezes = []DesignationFreeze{
		{RRule: "FREQ=WEEKLY;BYDAY=SU"},
		{RRule: "INVALID_RRULE"},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in designationFreezes[1]")
}

func TestValidate_IntervalRRuleNeedsStart(t *testing.T) {
	cfg := validConfig()
	cfg.DesignationFreezes = []DesignationFreeze{{RRule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=SA"}}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need a DTSTART")

	cfg.DesignationFreezes[0].RRule = "DTSTART=20261205;FREQ=WEEKLY;INTERVAL=2;BYDAY=SA"
	assert.NoError(t, Validate(cfg))

	cfg.DesignationFreezes[0].RRule = "FREQ=DAILY;COUNT=3"
	assert.Error(t, Validate(cfg))
}

func TestValidate_EmptyRRule(t *testing.T) {
	cfg := validConfig()
	cfg.DesignationFreezes = []DesignationFreeze{{Reason: "no rule"}}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestEngine(t *testing.T) {
	engine := validConfig().Engine()

	assert.Equal(t, 80.0, engine.Travel.DrivingRadiusKm)
	assert.Equal(t, 15.0, engine.Travel.WalkingRadiusKm)
	assert.Equal(t, 7, engine.MinLeadDays)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designation_config.test.yaml")
	content := `
federation: Test Federation
drivingRadiusKm: 60
walkingRadiusKm: 10
minLeadDays: 7
responseTimeoutHours: 24
notificationChannel: nats
designationFreezes:
  - rrule: "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=6"
    reason: Epiphany
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Federation", cfg.Federation)
	assert.Equal(t, 60.0, cfg.DrivingRadiusKm)
	assert.Equal(t, ChannelNATS, cfg.NotificationChannel)
	require.Len(t, cfg.DesignationFreezes, 1)
	assert.Equal(t, "Epiphany", cfg.DesignationFreezes[0].Reason)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("federation: [unclosed"), 0644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestEnvFileName(t *testing.T) {
	assert.Equal(t, "designation_config.prod.yaml", envFileName("designation_config", "prod", "yaml"))
	assert.Equal(t, "oauthClient.json", envFileName("oauthClient", "", "json"))
}

func TestLoadSecrets_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/designation_test")
	t.Setenv("NATS_URL", "nats://nats.internal:4222")

	secrets, err := LoadSecrets("test")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/designation_test", secrets.DatabaseURL)
	assert.Equal(t, "nats://nats.internal:4222", secrets.NATSURL)
}

func TestLoadSecrets_FromDotEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("NATS_URL", "")
	os.Unsetenv("NATS_URL")
	require.NoError(t, os.WriteFile(".env.test", []byte("DATABASE_URL=postgres://from-file/db\n"), 0644))

	secrets, err := LoadSecrets("test")
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-file/db", secrets.DatabaseURL)
	assert.Equal(t, "nats://127.0.0.1:4222", secrets.NATSURL)
}
