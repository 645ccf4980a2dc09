package logger

import (
	"log/slog"
	"strings"
)

const redactedValue = "***REDACTED***"

// Key fragments whose values are never logged.
var secretKeyFragments = []string{
	"password",
	"secret",
	"credential",
	"access_key",
	"session_token",
	"authorization",
}

// AWS access key ID prefixes: long-term (AKIA) and STS (ASIA).
var keyIDPrefixes = []string{"AKIA", "ASIA"}

// redactAttr hides string values under secret-looking keys and shortens
// access key IDs wherever they appear. Groups are walked recursively.
func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if masked, ok := maskKeyID(v); ok {
			return slog.String(a.Key, masked)
		}
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			out = append(out, redactAttr(ga))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether an attribute or config key names a secret.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, frag := range secretKeyFragments {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

// MaskKeyID shortens an access key ID to its prefix plus three leading and
// three trailing characters. Other values are returned unchanged.
func MaskKeyID(value string) string {
	if masked, ok := maskKeyID(value); ok {
		return masked
	}
	return value
}

func maskKeyID(value string) (string, bool) {
	for _, prefix := range keyIDPrefixes {
		if !strings.HasPrefix(value, prefix) {
			continue
		}
		rest := value[len(prefix):]
		if len(rest) <= 6 {
			return prefix + "***", true
		}
		return prefix + rest[:3] + "..." + rest[len(rest)-3:], true
	}
	return "", false
}
