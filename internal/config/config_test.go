package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("signing-key"))

	tcases := []struct {
		name           string
		serverAddr     string
		databaseDSN    string
		base64Secret   string
		allowedOrigins []string
		expectError    bool
	}{
		{
			name:           "valid config",
			serverAddr:     "localhost:8000",
			databaseDSN:    "host=localhost user=postgres",
			base64Secret:   secret,
			allowedOrigins: []string{"http://localhost:3000"},
		},
		{
			name:         "missing server address",
			databaseDSN:  "host=localhost user=postgres",
			base64Secret: secret,
			expectError:  true,
		},
		{
			name:         "missing database dsn",
			serverAddr:   "localhost:8000",
			base64Secret: secret,
			expectError:  true,
		},
		{
			name:        "missing signing secret",
			serverAddr:  "localhost:8000",
			databaseDSN: "host=localhost user=postgres",
			expectError: true,
		},
		{
			name:         "invalid base64 secret",
			serverAddr:   "localhost:8000",
			databaseDSN:  "host=localhost user=postgres",
			base64Secret: "not base64!!!",
			expectError:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, tc.databaseDSN, tc.base64Secret, tc.allowedOrigins)
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr)
			assert.Equal(t, tc.databaseDSN, cfg.DatabaseDSN)
			assert.Equal(t, []byte("signing-key"), cfg.SigningKey)
			assert.Equal(t, tc.allowedOrigins, cfg.AllowedOrigins)
		})
	}
}
