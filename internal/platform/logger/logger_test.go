package logger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRedactorSecretsAndIdentities(t *testing.T) {
	r := redactor{enabled: true, salt: "s"}
	owner := uuid.New()
	out := r.pairs([]any{"api_key", "k", "owner_id", owner, "topic", "algebra", "dangling"})

	if len(out) != 7 {
		t.Fatalf("expected 7 entries, got %d: %v", len(out), out)
	}
	if out[1] != redacted {
		t.Fatalf("api_key not redacted: %v", out[1])
	}
	h, _ := out[3].(string)
	if !strings.HasPrefix(h, "hash:") || len(h) != len("hash:")+12 || strings.Contains(h, owner.String()) {
		t.Fatalf("owner_id not hashed: %v", out[3])
	}
	if out[5] != "algebra" {
		t.Fatalf("plain value changed: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out[6])
	}
}

func TestRedactorHashIsStable(t *testing.T) {
	r := redactor{enabled: true, salt: "s"}
	if r.hash("abc") != r.hash("abc") {
		t.Fatalf("hash not deterministic")
	}
	if r.hash("abc") == (redactor{salt: "other"}).hash("abc") {
		t.Fatalf("salt ignored")
	}
	if r.hash(nil) != "" {
		t.Fatalf("nil should hash to empty")
	}
}

func TestRedactorNestedAndJWT(t *testing.T) {
	r := redactor{enabled: true}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	got := r.value("payload", map[string]any{"Email": "a@b.c", "n": 1, "list": []any{jwt}})
	m := got.(map[string]any)
	if m["Email"] != redacted || m["n"] != 1 {
		t.Fatalf("unexpected nested map: %v", m)
	}
	if m["list"].([]any)[0] != redacted {
		t.Fatalf("jwt in slice not redacted: %v", m["list"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", "k", "v")
	l.With("a", 1).Warn("ignored")
	l.Sync()
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil || l == nil {
		t.Fatalf("New(test): %v", err)
	}
}
