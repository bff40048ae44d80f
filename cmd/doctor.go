package cmd

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

type checkResult struct {
	name     string
	required bool
	ok       bool
	detail   string
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().String("env-file", "", "path to env file")
	doctorCmd.Flags().String("shell-file", "", "shell rc file expected to source env file")
	doctorCmd.Flags().Bool("offline", false, "skip the backend reachability probe")
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Pre-flight check (env vars, env file, backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		return runDoctor(cmd.Context(), envFileFlag(cmd), shellFileFlag(cmd), offline)
	},
}

func runDoctor(ctx context.Context, envFile, shellFile string, offline bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, found, err := resolveEnv(envFile)
	if err != nil {
		return err
	}

	results := make([]checkResult, 0)

	envFileCheck := checkResult{name: "file:env_file", ok: found, detail: envFile}
	if !found {
		envFileCheck.detail = "not found: " + envFile
	}
	results = append(results, envFileCheck)

	results = append(results, checkResult{
		name:   "file:shell_source",
		ok:     shellSourcesEnvFile(shellFile, envFile),
		detail: shellFile,
	})

	results = append(results, credentialChecks(env)...)

	if rawURL, ok := env.LookupEnv(credentials.EnvURL); ok && rawURL != "" {
		results = append(results, backendChecks(ctx, rawURL, cfg.BackendTimeout, offline)...)
	}

	printHeader("Backend Test Doctor")
	fmt.Fprintf(stdout, "env_file: %s\n\n", envFile)

	passed, warned, failed := 0, 0, 0
	for _, r := range results {
		status := markSuccess()
		if !r.ok && r.required {
			status = markFailure()
			failed++
		} else if !r.ok {
			status = markWarning()
			warned++
		} else {
			passed++
		}
		printStatus(status, r.name, r.detail)
	}

	printSummaryBox(passed, warned, failed)

	if failed > 0 {
		return fmt.Errorf("doctor found %d required issue(s)", failed)
	}

	fmt.Fprintln(stdout, "doctor passed")
	return nil
}

// credentialChecks applies presence semantics: an empty value passes the
// required check but is flagged with a warning entry.
func credentialChecks(env credentials.Env) []checkResult {
	var results []checkResult
	for _, key := range requiredEnvVars {
		value, ok := env.LookupEnv(key)
		r := checkResult{name: "env:" + key, required: true, ok: ok, detail: "not set"}
		if ok {
			r.detail = credentials.Redact(key, value)
		}
		results = append(results, r)
		if ok && value == "" {
			results = append(results, checkResult{name: "env:" + key, detail: "set but empty"})
		}
	}

	for _, key := range optionalEnvVars {
		value, ok := env.LookupEnv(key)
		detail := "not set (optional)"
		if ok {
			detail = credentials.Redact(key, value)
		}
		results = append(results, checkResult{name: "env:" + key, ok: ok, detail: detail})
	}
	return results
}

// backendChecks validates the endpoint URL and, unless offline, dials it.
func backendChecks(ctx context.Context, rawURL string, timeout time.Duration, offline bool) []checkResult {
	addr, err := backendAddress(rawURL)
	if err != nil {
		return []checkResult{{name: "url:" + credentials.EnvURL, required: true, detail: err.Error()}}
	}
	results := []checkResult{{name: "url:" + credentials.EnvURL, required: true, ok: true, detail: addr}}
	if offline {
		return results
	}

	probe := checkResult{name: "service:backend", required: true, detail: "not reachable at " + addr}
	start := time.Now()
	if err := checkBackendReachable(ctx, addr, timeout); err == nil {
		probe.ok = true
		probe.detail = "listening at " + addr
	} else {
		logger.Debug().Err(err).Str("addr", addr).Msg("backend probe failed")
	}
	logger.Debug().Str("addr", addr).Dur("elapsed", time.Since(start)).Msg("backend probe finished")
	return append(results, probe)
}

// backendAddress turns SUPABASE_URL into a host:port for dialing.
func backendAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", rawURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", rawURL)
	}

	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// checkBackendReachable does a quick TCP dial to confirm something is
// listening at addr.
func checkBackendReachable(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("backend not reachable at %s: %w", addr, err)
	}
	return conn.Close()
}
