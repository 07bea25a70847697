package oaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

func TestGenerateTextUsesChatCompletions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "m", body["model"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"secondary says hi"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	got, err := c.GenerateText(context.Background(), "sys", "hello")
	require.NoError(t, err)
	require.Equal(t, "secondary says hi", got)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(logger.Nop(), Config{Model: "m"})
	require.Error(t, err)
}
