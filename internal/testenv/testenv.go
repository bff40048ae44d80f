// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package testenv gates tests that need a live Supabase backend.
//
//	func TestInsertRow(t *testing.T) {
//		backend := testenv.RequireBackend(t)
//		client := newClient(backend.URL, backend.ServiceRoleKey)
//		...
//	}
//
// Tests are skipped when credentials are missing. Set
// TESTENV_REQUIRE_BACKEND=1 in CI to turn the skip into a failure.
package testenv

import (
	"strings"
	"testing"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

// RequireEnvVar switches RequireBackend from skipping to failing.
const RequireEnvVar = credentials.EnvRequireBackend

// Backend holds the credentials a live test authenticates with.
type Backend struct {
	URL            string
	ServiceRoleKey string
}

// RequireBackend returns the backend credentials from the process
// environment, or skips tb when credentials.MissingCredentials is set. The
// skip names the variables that were unset when that flag was computed.
func RequireBackend(tb testing.TB) Backend {
	tb.Helper()
	backend, _ := requireBackend(tb, credentials.OSEnv{}, credentials.MissingAtLoad())
	return backend
}

// requireBackend decides from missing alone; env supplies the strict switch
// and the credential values.
func requireBackend(tb testing.TB, env credentials.Env, missing []string) (Backend, bool) {
	tb.Helper()
	if len(missing) > 0 {
		msg := strings.Join(missing, ", ") + " not set; live backend tests need " +
			strings.Join(credentials.Required(), " and ")
		if strict(env) {
			tb.Fatalf("%s (%s is set)", msg, RequireEnvVar)
		} else {
			tb.Skipf("skipping: %s", msg)
		}
		return Backend{}, false
	}

	url, _ := env.LookupEnv(credentials.EnvURL)
	key, _ := env.LookupEnv(credentials.EnvServiceRoleKey)
	return Backend{URL: url, ServiceRoleKey: key}, true
}

func strict(env credentials.Env) bool {
	v, _ := env.LookupEnv(RequireEnvVar)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
