package credentials

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loadHelperEnv = "TESTENV_CREDENTIALS_HELPER"

// TestLoadTimeFlagHelper runs in a child test binary whose environment is
// fixed before the package initialises.
func TestLoadTimeFlagHelper(t *testing.T) {
	if os.Getenv(loadHelperEnv) != "1" {
		t.Skip("runs as a child of TestMissingCredentials_ComputedAtLoad")
	}
	fmt.Printf("at-load=%t\n", MissingCredentials)

	_ = os.Unsetenv(EnvURL)
	_ = os.Unsetenv(EnvServiceRoleKey)
	fmt.Printf("after-unset=%t live=%t\n", MissingCredentials, Missing(OSEnv{}))
}

func TestMissingCredentials_ComputedAtLoad(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want bool
	}{
		{name: "neither set", vars: nil, want: true},
		{name: "url only", vars: map[string]string{EnvURL: "https://x.test"}, want: true},
		{name: "both set", vars: map[string]string{EnvURL: "https://x.test", EnvServiceRoleKey: "service-role"}, want: false},
		{name: "empty key", vars: map[string]string{EnvURL: "https://x.test", EnvServiceRoleKey: ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runLoadHelper(t, tt.vars)

			assert.Contains(t, out, fmt.Sprintf("at-load=%t\n", tt.want))
			assert.Contains(t, out, fmt.Sprintf("after-unset=%t live=true\n", tt.want))
		})
	}
}

func runLoadHelper(t *testing.T, vars map[string]string) string {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestLoadTimeFlagHelper$")
	cmd.Env = append(environWithout(Required()...), loadHelperEnv+"=1")
	for k, v := range vars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

func environWithout(names ...string) []string {
	var out []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		drop := false
		for _, name := range names {
			if key == name {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, kv)
		}
	}
	return out
}
