package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	AppName              = "sitewatch"
	DefaultCheckInterval = 60
	ProbeTimeout         = 10
	GateTimeout          = 5
	MaxRedirects         = 5

	// Low-overhead endpoint used to tell "my connection is down" apart
	// from "that one site is down".
	GateURL = "https://www.google.com/generate_204"
)

// MailRelay is deployment configuration for the outgoing SMTP server.
// It is never stored per-site or per-cycle.
type MailRelay struct {
	Host     string
	Port     int
	StartTLS bool
}

// LoadMailRelay reads the relay settings from the environment, falling
// back to Gmail over implicit TLS.
func LoadMailRelay() MailRelay {
	port := getenvIntDefault("SITEWATCH_SMTP_PORT", 465)
	return MailRelay{
		Host:     getenvDefault("SITEWATCH_SMTP_HOST", "smtp.gmail.com"),
		Port:     port,
		StartTLS: getenvBoolDefault("SITEWATCH_SMTP_STARTTLS", port != 465),
	}
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(home, ".config", AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}

func GetDatabasePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sitewatch.db"), nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
