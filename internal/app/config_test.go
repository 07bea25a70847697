package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aryansondharva/Aura/internal/jobs"
	"github.com/aryansondharva/Aura/internal/modules/conversation"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "SWEEP_INTERVAL", "CHAT_SESSION_TTL", "CORS_ALLOWED_ORIGINS", "UPLOAD_MAX_BYTES"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, jobs.DefaultSweepInterval, cfg.SweepInterval)
	assert.Equal(t, conversation.DefaultTTL, cfg.ChatSessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, int64(20<<20), cfg.UploadMaxBytes)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "0")
	t.Setenv("CHAT_SESSION_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	cfg := LoadConfig()
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.Equal(t, 90*time.Second, cfg.ChatSessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
