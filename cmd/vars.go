// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

// Shared environment variable lists used across doctor, validate env,
// env show and exec.
var requiredEnvVars = credentials.Required()

var optionalEnvVars = []string{
	"SUPABASE_ANON_KEY",
	"SUPABASE_JWT_SECRET",
	credentials.EnvRequireBackend,
}

// allEnvVars returns required + optional in order.
func allEnvVars() []string {
	out := make([]string, 0, len(requiredEnvVars)+len(optionalEnvVars))
	out = append(out, requiredEnvVars...)
	out = append(out, optionalEnvVars...)
	return out
}

type varsListing struct {
	Required []string `json:"required" yaml:"required"`
	Optional []string `json:"optional" yaml:"optional"`
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.Flags().StringP("output", "o", "text", "output format: text, json, yaml")
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List required and optional env vars",
	RunE:  runVars,
}

func runVars(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	listing := varsListing{
		Required: credentials.Required(),
		Optional: append([]string(nil), optionalEnvVars...),
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(listing)
	case "text", "":
		for _, key := range listing.Required {
			fmt.Fprintf(w, "%s\trequired\n", key)
		}
		for _, key := range listing.Optional {
			fmt.Fprintf(w, "%s\toptional\n", key)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
