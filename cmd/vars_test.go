package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

func TestRequiredEnvVars(t *testing.T) {
	assert.Equal(t, []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"}, requiredEnvVars)
}

func TestRequiredEnvVars_DoesNotAliasCredentials(t *testing.T) {
	orig := requiredEnvVars[0]
	t.Cleanup(func() { requiredEnvVars[0] = orig })

	requiredEnvVars[0] = "CHANGED"

	assert.Equal(t, credentials.EnvURL, credentials.Required()[0])
	assert.True(t, credentials.Missing(credentials.MapEnv{"CHANGED": "x", credentials.EnvServiceRoleKey: "k"}))
}

func TestOptionalEnvVars_NonEmpty(t *testing.T) {
	if len(optionalEnvVars) == 0 {
		t.Error("optionalEnvVars should not be empty")
	}
}

func TestAllEnvVars(t *testing.T) {
	all := allEnvVars()
	expected := len(requiredEnvVars) + len(optionalEnvVars)
	if len(all) != expected {
		t.Errorf("allEnvVars() returned %d items, expected %d", len(all), expected)
	}

	// First items should be the required ones
	for i, v := range requiredEnvVars {
		if all[i] != v {
			t.Errorf("allEnvVars()[%d] = %q, want %q", i, all[i], v)
		}
	}
}

func runVarsWith(t *testing.T, format string) string {
	t.Helper()
	c := &cobra.Command{}
	c.Flags().StringP("output", "o", "text", "")
	require.NoError(t, c.Flags().Set("output", format))
	var buf bytes.Buffer
	c.SetOut(&buf)
	require.NoError(t, runVars(c, nil))
	return buf.String()
}

func TestRunVars_Text(t *testing.T) {
	out := runVarsWith(t, "text")
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, len(allEnvVars()))
	assert.Equal(t, "SUPABASE_URL\trequired", lines[0])
	assert.Equal(t, "SUPABASE_SERVICE_ROLE_KEY\trequired", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "\toptional"))
}

func TestRunVars_JSON(t *testing.T) {
	var got varsListing
	require.NoError(t, json.Unmarshal([]byte(runVarsWith(t, "json")), &got))

	assert.Equal(t, requiredEnvVars, got.Required)
	assert.Equal(t, optionalEnvVars, got.Optional)
}

func TestRunVars_YAML(t *testing.T) {
	var got varsListing
	require.NoError(t, yaml.Unmarshal([]byte(runVarsWith(t, "yaml")), &got))

	assert.Equal(t, requiredEnvVars, got.Required)
}

func TestRunVars_UnknownFormat(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().StringP("output", "o", "text", "")
	require.NoError(t, c.Flags().Set("output", "xml"))
	c.SetOut(&bytes.Buffer{})

	assert.Error(t, runVars(c, nil))
}
