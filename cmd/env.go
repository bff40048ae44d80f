package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

const shellMarker = "# backend test credentials (testenv-cli)"

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envSetupCmd)
	envCmd.AddCommand(envInitCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envApplyCmd)
	envCmd.AddCommand(envResetCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Setup and manage backend credential environment values",
}

// --- env setup ---

var envSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate env file and update shell profile",
	RunE:  runEnvSetup,
}

func init() {
	envSetupCmd.Flags().Bool("force", false, "overwrite env file and re-append shell source line")
	envSetupCmd.Flags().Bool("prompt", false, "prompt for the URL and service role key")
	envSetupCmd.Flags().String("url", "", "value for SUPABASE_URL")
	envSetupCmd.Flags().String("env-file", "", "path to generated env file")
	envSetupCmd.Flags().String("shell-file", "", "shell rc file to update")
}

func runEnvSetup(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	envFile := envFileFlag(cmd)
	shellFile := shellFileFlag(cmd)

	values, err := collectCredentialValues(cmd)
	if err != nil {
		return err
	}

	if err := writeEnvFile(envFile, values, force); err != nil {
		return err
	}

	updated, err := applyEnvSourceToShell(envFile, shellFile, force)
	if err != nil {
		return err
	}

	printStatus(markSuccess(), "env_file", envFile)
	printWrittenVars(values)
	if updated {
		printStatus(markSuccess(), "shell_file", "updated "+shellFile)
	} else {
		printStatus(markSuccess(), "shell_file", "already contains source "+envFile)
	}
	fmt.Fprintln(stdout)
	printNext("source "+shellFile, "testenv-cli validate env")
	return nil
}

// --- env init (hidden) ---

var envInitCmd = &cobra.Command{
	Use:    "init",
	Short:  "Create env file without updating shell profile",
	Hidden: true,
	RunE:   runEnvInit,
}

func init() {
	envInitCmd.Flags().Bool("force", false, "overwrite env file if it already exists")
	envInitCmd.Flags().Bool("prompt", false, "prompt for the URL and service role key")
	envInitCmd.Flags().String("url", "", "value for SUPABASE_URL")
	envInitCmd.Flags().String("env-file", "", "path to generated env file")
}

func runEnvInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	envFile := envFileFlag(cmd)

	values, err := collectCredentialValues(cmd)
	if err != nil {
		return err
	}

	if err := writeEnvFile(envFile, values, force); err != nil {
		return err
	}

	printStatus(markSuccess(), "env_file", envFile)
	printWrittenVars(values)
	fmt.Fprintln(stdout)
	printNext("source "+envFile, "testenv-cli doctor")
	return nil
}

// --- env show (hidden) ---

var envShowCmd = &cobra.Command{
	Use:    "show",
	Short:  "Display current env values",
	Hidden: true,
	RunE:   runEnvShow,
}

func init() {
	envShowCmd.Flags().String("env-file", "", "path to env file")
}

func runEnvShow(cmd *cobra.Command, args []string) error {
	envFile := envFileFlag(cmd)

	env, _, err := resolveEnv(envFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "env_file: %s\n\n", envFile)
	for _, key := range allEnvVars() {
		value, ok := env.LookupEnv(key)
		switch {
		case !ok:
			printStatus(markWarning(), key, "not set")
		case value == "":
			printStatus(markWarning(), key, "set (empty)")
		default:
			printStatus(markSuccess(), key, credentials.Redact(key, value))
		}
	}
	return nil
}

// --- env apply (hidden) ---

var envApplyCmd = &cobra.Command{
	Use:    "apply",
	Short:  "Append source line to shell profile",
	Hidden: true,
	RunE:   runEnvApply,
}

func init() {
	envApplyCmd.Flags().String("env-file", "", "path to env file")
	envApplyCmd.Flags().String("shell-file", "", "shell rc file to update")
	envApplyCmd.Flags().Bool("force", false, "append source line even if a similar line exists")
}

func runEnvApply(cmd *cobra.Command, args []string) error {
	envFile := envFileFlag(cmd)
	shellFile := shellFileFlag(cmd)
	force, _ := cmd.Flags().GetBool("force")

	updated, err := applyEnvSourceToShell(envFile, shellFile, force)
	if err != nil {
		return err
	}

	if updated {
		printStatus(markSuccess(), "shell_file", "updated "+shellFile)
	} else {
		printStatus(markSuccess(), "shell_file", "already contains source "+envFile)
	}
	printNext("source "+shellFile, "testenv-cli doctor")
	return nil
}

// --- env reset ---

var envResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the credential env file and clean shell profile",
	Long: `Removes the credential env file and cleans up the shell profile.

This command will:
  1. Remove the env file (default ~/.testenv/config/testenv.env)
  2. Remove the source line from the shell RC file (~/.bashrc, ~/.zshrc, etc.)
  3. Display the command to unset the variables in the current session

Use --purge to also remove ~/.testenv (including config.yaml).`,
	RunE: runEnvReset,
}

func init() {
	envResetCmd.Flags().Bool("yes", false, "skip confirmation prompt")
	envResetCmd.Flags().String("env-file", "", "env file to remove")
	envResetCmd.Flags().String("shell-file", "", "shell rc file to clean (default: auto-detect)")
	envResetCmd.Flags().Bool("purge", false, "also remove the ~/.testenv directory")
}

func runEnvReset(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home dir: %w", err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	purge, _ := cmd.Flags().GetBool("purge")
	envFile := envFileFlag(cmd)
	shellFile := shellFileFlag(cmd)
	testenvDir := filepath.Join(home, ".testenv")

	printHeader("Reset Backend Test Environment")

	envFileExists := pathExists(envFile)
	shellSources := shellSourcesEnvFile(shellFile, envFile)
	testenvDirExists := purge && pathExists(testenvDir)

	if !envFileExists && !shellSources && !testenvDirExists {
		printStatus(markSuccess(), "reset", "no credential environment found")
		return nil
	}

	fmt.Fprintln(stdout, "The following will be removed:")
	if envFileExists {
		fmt.Fprintf(stdout, "  • %s\n", envFile)
	}
	if shellSources {
		fmt.Fprintf(stdout, "  • source line in %s\n", shellFile)
	}
	if testenvDirExists {
		fmt.Fprintf(stdout, "  • %s (entire directory)\n", testenvDir)
	}
	fmt.Fprintln(stdout)

	if !yes && !confirmProceed("Proceed? [y/N]: ") {
		fmt.Fprintln(stdout, "Cancelled")
		return nil
	}

	if envFileExists {
		if err := os.Remove(envFile); err != nil {
			return fmt.Errorf("failed to remove env file: %w", err)
		}
		printStatus(markSuccess(), "removed", envFile)
	}

	if shellSources {
		cleaned, err := removeEnvSourceFromShell(envFile, shellFile)
		if err != nil {
			return fmt.Errorf("failed to clean shell file: %w", err)
		}
		if cleaned {
			printStatus(markSuccess(), "cleaned", shellFile)
		} else {
			printStatus(markInfo(), "no_change", shellFile+" (no source line found)")
		}
	}

	if testenvDirExists {
		if err := os.RemoveAll(testenvDir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", testenvDir, err)
		}
		printStatus(markSuccess(), "removed", testenvDir)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "To unset variables in current session, run:")
	fmt.Fprintf(stdout, "  unset %s\n", strings.Join(requiredEnvVars, " "))
	return nil
}

// --- helpers ---

func envFileFlag(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("env-file"); v != "" {
		return v
	}
	return cfg.EnvFile
}

func shellFileFlag(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("shell-file"); v != "" {
		return v
	}
	return cfg.ShellFile
}

func defaultShellRC() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", ".bashrc")
	}
	switch filepath.Base(os.Getenv("SHELL")) {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "fish":
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

func defaultEnvFilePath(home string) string {
	return filepath.Join(home, ".testenv", "config", "testenv.env")
}

// collectCredentialValues gathers values for the env file from flags, the
// terminal (--prompt), and the current process environment, in that order.
// Names with no value are left out so they stay detectably unset.
func collectCredentialValues(cmd *cobra.Command) (map[string]string, error) {
	values := map[string]string{}
	for _, key := range requiredEnvVars {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	if url, _ := cmd.Flags().GetString("url"); url != "" {
		values[credentials.EnvURL] = url
	}

	prompt, _ := cmd.Flags().GetBool("prompt")
	if !prompt {
		return values, nil
	}

	if _, ok := values[credentials.EnvURL]; !ok {
		url, err := promptLine(credentials.EnvURL + ": ")
		if err != nil {
			return nil, err
		}
		values[credentials.EnvURL] = url
	}

	key, err := promptSecret(credentials.EnvServiceRoleKey + " (input hidden): ")
	if err != nil {
		return nil, err
	}
	if key != "" {
		values[credentials.EnvServiceRoleKey] = key
	}
	return values, nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(stdout, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--prompt needs an interactive terminal")
	}
	fmt.Fprint(stdout, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func printWrittenVars(values map[string]string) {
	for _, key := range requiredEnvVars {
		if v, ok := values[key]; ok {
			printVarStatus(key, v, true)
		} else {
			printStatus(markWarning(), key, "left unset (edit the env file)")
		}
	}
}

// writeEnvFile writes the credential env file with mode 0600 because it may
// hold the service role key.
func writeEnvFile(envFile string, values map[string]string, force bool) error {
	content, err := buildEnvFile(values)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(envFile), 0o700); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	if !force && pathExists(envFile) {
		return fmt.Errorf("env file already exists: %s (use --force to overwrite)", envFile)
	}

	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	logger.Debug().Str("env_file", envFile).Int("values", len(values)).Msg("env file written")
	return nil
}

// envValueUnsafe lists the characters that cannot be written inside single
// quotes so that both a POSIX shell and the dotenv parser read the same value.
const envValueUnsafe = "'\\\n\r\x00"

// buildEnvFile renders values as single-quoted exports, so sourcing the file
// never expands $, backticks or backslashes.
func buildEnvFile(values map[string]string) (string, error) {
	var b strings.Builder
	b.WriteString("# Backend test credentials generated by testenv-cli env setup\n")
	b.WriteString("# source this file before running live backend tests\n")
	b.WriteString("\n")

	writeExport := func(key string) error {
		v, ok := values[key]
		if !ok {
			b.WriteString("# export " + key + "=''\n")
			return nil
		}
		if strings.ContainsAny(v, envValueUnsafe) {
			return fmt.Errorf("value for %s contains a quote, backslash or line break; set it in the environment instead", key)
		}
		b.WriteString("export " + key + "='" + v + "'\n")
		return nil
	}

	for _, key := range requiredEnvVars {
		if err := writeExport(key); err != nil {
			return "", err
		}
	}
	b.WriteString("\n")
	b.WriteString("# Optional\n")
	for _, key := range optionalEnvVars {
		if err := writeExport(key); err != nil {
			return "", err
		}
	}
	b.WriteString("\n")

	return b.String(), nil
}

func shellSourcesEnvFile(shellFile, envFile string) bool {
	data, err := os.ReadFile(shellFile)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "source "+envFile)
}

func applyEnvSourceToShell(envFile, shellFile string, force bool) (bool, error) {
	if !fileExists(envFile) {
		return false, fmt.Errorf("env file does not exist: %s", envFile)
	}

	line := "source " + envFile

	existing := ""
	if data, readErr := os.ReadFile(shellFile); readErr == nil {
		existing = string(data)
	} else if !errors.Is(readErr, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read shell file %s: %w", shellFile, readErr)
	}

	if !force && strings.Contains(existing, line) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(shellFile), 0o755); err != nil {
		return false, fmt.Errorf("failed to create shell file directory: %w", err)
	}

	f, openErr := os.OpenFile(shellFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return false, fmt.Errorf("failed to open shell file %s: %w", shellFile, openErr)
	}
	defer f.Close()

	if existing != "" && !strings.HasSuffix(existing, "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, fmt.Errorf("failed writing newline to shell file: %w", err)
		}
	}

	if _, err := f.WriteString("\n" + shellMarker + "\n" + line + "\n"); err != nil {
		return false, fmt.Errorf("failed writing source line to shell file: %w", err)
	}

	return true, nil
}

func removeEnvSourceFromShell(envFile, shellFile string) (bool, error) {
	content, err := os.ReadFile(shellFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	lines := strings.Split(string(content), "\n")
	newLines := make([]string, 0, len(lines))
	removed := false

	for _, line := range lines {
		if strings.Contains(line, envFile) && strings.Contains(line, "source") {
			removed = true
			continue
		}
		if strings.TrimSpace(line) == shellMarker {
			continue
		}
		newLines = append(newLines, line)
	}

	if !removed {
		return false, nil
	}

	if err := os.WriteFile(shellFile, []byte(strings.Join(newLines, "\n")), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func confirmProceed(prompt string) bool {
	answer, err := promptLine(prompt)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
