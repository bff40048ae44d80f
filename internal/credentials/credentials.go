// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package credentials declares the environment variables a live-backend
// test run needs and reports whether any of them are absent.
package credentials

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// EnvURL is the Supabase project endpoint.
	EnvURL = "SUPABASE_URL"
	// EnvServiceRoleKey is the service-role secret used to authenticate.
	EnvServiceRoleKey = "SUPABASE_SERVICE_ROLE_KEY"

	// EnvRequireBackend, when truthy, makes missing credentials fail tests
	// instead of skipping them.
	EnvRequireBackend = "TESTENV_REQUIRE_BACKEND"
)

// requiredEnvVars lists the variables in the order they are reported.
var requiredEnvVars = []string{
	EnvURL,
	EnvServiceRoleKey,
}

// missingAtLoad is the process environment's answer when the package was
// initialised. MissingCredentials is derived from it and neither is updated.
var missingAtLoad = MissingNames(OSEnv{})

// MissingCredentials is evaluated once against the process environment when
// the package is initialised. Later changes to the environment are not seen.
var MissingCredentials = len(missingAtLoad) > 0

// ErrMissingCredentials is wrapped by Check when a required variable is unset.
var ErrMissingCredentials = errors.New("missing backend credentials")

// Required returns the required variable names in report order. The slice
// is a fresh copy on every call.
func Required() []string {
	out := make([]string, len(requiredEnvVars))
	copy(out, requiredEnvVars)
	return out
}

// MissingAtLoad returns the names that were unset when MissingCredentials was
// computed. It is empty exactly when MissingCredentials is false.
func MissingAtLoad() []string {
	out := make([]string, len(missingAtLoad))
	copy(out, missingAtLoad)
	return out
}

// Missing reports whether any required variable is unset in env. A variable
// set to the empty string counts as present.
func Missing(env Env) bool {
	for _, key := range requiredEnvVars {
		if _, ok := env.LookupEnv(key); !ok {
			return true
		}
	}
	return false
}

// MissingNames returns the unset required variables in requirement order.
func MissingNames(env Env) []string {
	var missing []string
	for _, key := range requiredEnvVars {
		if _, ok := env.LookupEnv(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Check returns an error wrapping ErrMissingCredentials that names every
// unset required variable, or nil when all are present.
func Check(env Env) error {
	missing := MissingNames(env)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s not set", ErrMissingCredentials, strings.Join(missing, ", "))
}
