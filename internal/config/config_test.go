package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ValidateBackend(t *testing.T) {
	tests := []struct {
		name        string
		backend     string
		expectError bool
	}{
		{"memory backend", "memory", false},
		{"file backend", "file", false},
		{"redis backend", "redis", false},
		{"unknown backend", "keychain", true},
		{"empty backend", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				APIBaseURL:        "https://campus-info.onrender.com/v1/",
				TokenStoreBackend: tt.backend,
				TokenStorePath:    ".campusbuzz/token",
				TokenPassphrase:   "dev-passphrase",
				RedisURL:          "localhost:6379",
				Env:               "development",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateFileBackendRequirements(t *testing.T) {
	c := &Config{
		APIBaseURL:        "https://campus-info.onrender.com/v1/",
		TokenStoreBackend: BackendFile,
		TokenStorePath:    "",
		TokenPassphrase:   "dev-passphrase",
		Env:               "development",
	}
	assert.Error(t, c.Validate())

	c.TokenStorePath = ".campusbuzz/token"
	c.TokenPassphrase = ""
	assert.Error(t, c.Validate())

	c.TokenPassphrase = "dev-passphrase"
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateProductionPassphrase(t *testing.T) {
	c := &Config{
		APIBaseURL:        "https://campus-info.onrender.com/v1/",
		TokenStoreBackend: BackendFile,
		TokenStorePath:    ".campusbuzz/token",
		TokenPassphrase:   "change-me-in-production",
		Env:               "production",
	}
	assert.Error(t, c.Validate())

	c.TokenPassphrase = "an-actually-strong-passphrase"
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateBaseURLRequired(t *testing.T) {
	c := &Config{TokenStoreBackend: BackendMemory}
	c.APIBaseURL = ""
	assert.Error(t, c.Validate())
}
