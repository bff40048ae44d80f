package credentials

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestIsSecret(t *testing.T) {
	assert.True(t, IsSecret(EnvServiceRoleKey))
	assert.True(t, IsSecret("supabase_jwt_secret"))
	assert.False(t, IsSecret(EnvURL))
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"plain value passes through", EnvURL, "https://x.test", "https://x.test"},
		{"empty secret stays empty", EnvServiceRoleKey, "", ""},
		{"short secret fully masked", EnvServiceRoleKey, "abc", RedactedValue},
		{"long secret keeps prefix", EnvServiceRoleKey, "eyJhbGciOiJIUzI1NiJ9.payload", "eyJh…" + RedactedValue},
		{"multibyte prefix kept whole", EnvServiceRoleKey, "pässwörd-ünïcode", "päss…" + RedactedValue},
		{"short multibyte secret fully masked", EnvServiceRoleKey, "ééééééééééé", RedactedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.key, tt.value))
		})
	}
}

func TestRedact_ValidUTF8(t *testing.T) {
	for _, value := range []string{"日本語のサービスロールキー値", "ñññññññññññññ", "🔑🔑🔑🔑🔑🔑🔑🔑🔑🔑🔑🔑"} {
		got := Redact(EnvServiceRoleKey, value)
		assert.True(t, utf8.ValidString(got), "%q -> %q", value, got)
		assert.NotContains(t, got, value)
	}
}
