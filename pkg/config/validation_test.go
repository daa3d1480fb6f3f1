package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return GetDefaultConfig()
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level string
		ok    bool
	}{
		{"DEBUG", true},
		{"info", true},
		{"WARN", true},
		{"error", true},
		{"TRACE", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logging.Level = tt.level
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "postgres"
	assert.Error(t, Validate(cfg))
}

func TestValidateBadgerRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Type = "badger"
	cfg.Store.Badger = map[string]any{}
	assert.Error(t, Validate(cfg))

	cfg.Store.Badger["in_memory"] = true
	assert.NoError(t, Validate(cfg))
}

func TestValidateFilesystemContentRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "filesystem"
	cfg.Content.Filesystem = map[string]any{}
	assert.Error(t, Validate(cfg))
}

func TestValidateS3ContentRequiresBucketAndRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Type = "s3"

	cfg.Content.S3 = map[string]any{"region": "eu-west-1"}
	assert.Error(t, Validate(cfg), "missing bucket")

	cfg.Content.S3 = map[string]any{"bucket": "docs"}
	assert.Error(t, Validate(cfg), "missing region")

	cfg.Content.S3 = map[string]any{"bucket": "docs", "region": "eu-west-1"}
	assert.NoError(t, Validate(cfg))
}

func TestValidateShutdownTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ShutdownTimeout = 0
	assert.Error(t, Validate(cfg))
}
