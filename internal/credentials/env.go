// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package credentials

import (
	"os"
	"strings"
)

// Env is a read-only view of environment variables.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads the live process environment.
type OSEnv struct{}

func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed snapshot. Keys absent from the map are unset.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Merge returns a new snapshot with the values of overlay applied on top of m.
func (m MapEnv) Merge(overlay map[string]string) MapEnv {
	out := make(MapEnv, len(m)+len(overlay))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Environ renders the snapshot as KEY=value pairs for exec.Cmd.Env.
func (m MapEnv) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

// Snapshot copies the current process environment.
func Snapshot() MapEnv {
	out := MapEnv{}
	for _, item := range os.Environ() {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}
