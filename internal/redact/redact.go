package redact

import "strings"

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// Secrets replaces each non-empty secret in s with Placeholder.
func Secrets(s string, secrets ...string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	pairs := make([]string, 0, len(secrets)*2)
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		pairs = append(pairs, secret, Placeholder)
	}
	if len(pairs) == 0 {
		return s
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Env redacts the value of every KEY=VALUE entry whose key looks like a credential.
func Env(env []string) []string {
	out := make([]string, len(env))
	for i, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if ok && isSecretKey(key) {
			out[i] = key + "=" + Placeholder
			continue
		}
		out[i] = kv
	}
	return out
}

func isSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"KEY", "SECRET", "TOKEN", "PASSWORD"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
