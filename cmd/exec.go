package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().String("env-file", "", "path to env file")
	execCmd.Flags().Bool("require", false, "refuse to run when credentials are missing")
	execCmd.Flags().Bool("dry-run", false, "print the command instead of executing")
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Run a command with the env file loaded",
	Long: `Run a command (typically the test runner) with the values from the env file
merged over the current environment.

When credentials are missing the command still runs and live backend tests
skip themselves. Use --require to stop before launching instead; --require
also sets TESTENV_REQUIRE_BACKEND=1 so helpers fail rather than skip.`,
	Example: "  testenv-cli exec -- go test ./...\n  testenv-cli exec --require -- go test -run Live ./...",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	require, _ := cmd.Flags().GetBool("require")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	envFile := envFileFlag(cmd)

	env, _, err := prepareExecEnv(envFile, require)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(stdout, strings.Join(args, " "))
		return nil
	}

	c := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = env.Environ()

	logger.Debug().Strs("args", args).Str("env_file", envFile).Msg("launching command")
	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &exitCodeError{name: args[0], code: exitErr.ExitCode()}
		}
		return fmt.Errorf("%s failed: %w", args[0], err)
	}
	return nil
}

// exitCodeError reports a child that ran and exited non-zero. Execute exits
// with the same code.
type exitCodeError struct {
	name string
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.name, e.code)
}

// prepareExecEnv builds the child environment and applies the missing
// credentials policy. missing lists the unset required names. Stdout belongs
// to the child, so the missing-credentials warning goes to the logger only.
func prepareExecEnv(envFile string, require bool) (credentials.MapEnv, []string, error) {
	env, _, err := resolveEnv(envFile)
	if err != nil {
		return nil, nil, err
	}

	missing := credentials.MissingNames(env)
	if require {
		if err := credentials.Check(env); err != nil {
			return nil, missing, fmt.Errorf("%w (see testenv-cli validate env)", err)
		}
		env[credentials.EnvRequireBackend] = "1"
		return env, missing, nil
	}

	if len(missing) > 0 {
		logger.Warn().Strs("missing", missing).Msg("backend credentials missing; live tests will be skipped")
	}
	return env, missing, nil
}
