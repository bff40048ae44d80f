package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialise testenv-cli settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default config to ~/.testenv/config/",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite config if it already exists")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	source := cfg.ConfigFile
	if !fileExists(source) {
		source += " (not found, defaults)"
	}
	printStatus(markInfo(), "config_file", source)
	printStatus(markInfo(), "env_file", cfg.EnvFile)
	printStatus(markInfo(), "shell_file", cfg.ShellFile)
	printStatus(markInfo(), "backend.timeout", cfg.BackendTimeout.String())
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	dest := cfg.ConfigFile

	if err := writeSettingsFile(dest, defaultSettings(), force); err != nil {
		return err
	}
	printStatus(markSuccess(), "config", dest)
	return nil
}

func writeSettingsFile(dest string, s *settings, force bool) error {
	if !force && pathExists(dest) {
		return fmt.Errorf("config already exists: %s (use --force to overwrite)", dest)
	}

	data, err := yaml.Marshal(s.toFile())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
