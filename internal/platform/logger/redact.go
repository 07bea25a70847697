package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// Keys containing one of these fragments never have their value logged.
var secretFragments = []string{
	"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email", "recipient",
}

// Keys containing one of these fragments are logged as a short salted hash so entries stay
// correlatable without exposing the identifier.
var identityFragments = []string{"user_id", "owner_id", "session_id"}

type redactor struct {
	enabled bool
	salt    string
}

var (
	activeOnce sync.Once
	active     redactor
)

// current reads LOG_REDACTION_ENABLED (default on) and LOG_HASH_SALT once per process.
func current() redactor {
	activeOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			active.enabled = false
		default:
			active.enabled = true
		}
		active.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return active
}

func scrub(kv []any) []any {
	r := current()
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	return r.pairs(kv)
}

func (r redactor) pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			// zap reports the dangling key itself.
			out = append(out, kv[i])
			break
		}
		name := stringify(kv[i])
		out = append(out, name, r.value(strings.ToLower(strings.TrimSpace(name)), kv[i+1]))
	}
	return out
}

func (r redactor) value(key string, v any) any {
	if key != "" {
		if containsAny(key, secretFragments) {
			return redacted
		}
		if containsAny(key, identityFragments) {
			return r.hash(v)
		}
	}
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return m
	case []any:
		if t == nil {
			return t
		}
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = r.value("", inner)
		}
		return s
	case string:
		if isJWT(t) {
			return redacted
		}
	}
	return v
}

func (r redactor) hash(v any) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func isJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
