package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"database": map[string]any{
			"uri":     "memory://",
			"timeout": "5s",
		},
		"secretKey": map[string]any{
			"token": "",
		},
		"auth": map[string]any{
			"bcryptCost":      10,
			"hashConcurrency": 0,
		},
		"http": map[string]any{
			"maxRequestBodySize": "100KB",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "DATABASE_URI", want: "database.uri"},
		{envKey: "SECRETKEY_TOKEN", want: "secretKey.token"},
		{envKey: "AUTH_BCRYPTCOST", want: "auth.bcryptCost"},
		{envKey: "AUTH_HASHCONCURRENCY", want: "auth.hashConcurrency"},
		{envKey: "HTTP_MAXREQUESTBODYSIZE", want: "http.maxRequestBodySize"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
