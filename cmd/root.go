package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "testenv-cli",
	Short:         "Backend test credential helper",
	Long:          "testenv-cli - backend test credential helper (" + resolvedVersion() + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		logger = initLogger(verbose, quiet)

		configPath, _ := cmd.Flags().GetString("config")
		explicit := cmd.Flags().Changed("config")
		loaded, err := loadSettings(configPath, explicit)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		cfg = loaded
		logger.Debug().
			Str("config_file", cfg.ConfigFile).
			Str("env_file", cfg.EnvFile).
			Str("shell_file", cfg.ShellFile).
			Dur("backend_timeout", cfg.BackendTimeout).
			Msg("settings resolved")
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		printStyledHelp()
	},
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: false,
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.testenv/config/config.yaml)")

	// Override help for root only; subcommands get cobra defaults.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			printStyledHelp()
		} else {
			// Use cobra's built-in help for subcommands.
			cmd.InitDefaultHelpFlag()
			cobra.CheckErr(cmd.UsageFunc()(cmd))
		}
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorize(ansiRed, "error: ")+err.Error())
		os.Exit(exitCode(err))
	}
}

// exitCode is 1 for command errors, or the child's status when exec ran a
// command that failed.
func exitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) && codeErr.code > 0 {
		return codeErr.code
	}
	return 1
}

func printStyledHelp() {
	groups := []helpGroup{
		{
			title: "Setup",
			commands: []helpEntry{
				{"doctor", "Pre-flight check (env vars, env file, backend)"},
				{"env setup", "Generate env file and update shell profile"},
				{"env reset", "Remove env file and shell profile source line"},
			},
		},
		{
			title: "Validation",
			commands: []helpEntry{
				{"validate env", "Confirm required credentials are set"},
				{"vars", "List required and optional env vars"},
			},
		},
		{
			title: "Testing",
			commands: []helpEntry{
				{"exec -- <cmd>", "Run a command with the env file loaded (--require)"},
			},
		},
		{
			title: "Configuration",
			commands: []helpEntry{
				{"config show", "Show resolved settings"},
				{"config init", "Write default config to ~/.testenv/config/"},
			},
		},
		{
			title: "Other",
			commands: []helpEntry{
				{"version", "Print CLI version and build metadata"},
				{"completion", "Generate shell completions"},
			},
		},
	}

	fmt.Fprintf(stdout, "testenv-cli - backend test credential helper (%s)\n", resolvedVersion())
	printGroupedHelp(groups)

	fmt.Fprintln(stdout, headerText("Quick Start"))
	fmt.Fprintln(stdout, "  testenv-cli env setup --prompt")
	fmt.Fprintf(stdout, "  source %s\n", defaultShellRC())
	fmt.Fprintln(stdout, "  testenv-cli validate env")
	fmt.Fprintln(stdout, "  testenv-cli exec -- go test ./...")
	fmt.Fprintln(stdout)
}
