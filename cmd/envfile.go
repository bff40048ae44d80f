package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

// loadEnvFile reads a dotenv/shell-style env file. A line like KEY="" sets
// KEY to the empty string, which still counts as present.
func loadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parse env file: %w", err)
	}
	return values, nil
}

// resolveEnv overlays the env file, when it exists, on a snapshot of the
// process environment. fileFound reports whether the file was read.
func resolveEnv(envFile string) (env credentials.MapEnv, fileFound bool, err error) {
	env = credentials.Snapshot()
	if !fileExists(envFile) {
		logger.Debug().Str("env_file", envFile).Msg("env file not found, using process environment")
		return env, false, nil
	}

	fileValues, err := loadEnvFile(envFile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	logger.Debug().Str("env_file", envFile).Int("values", len(fileValues)).Msg("env file loaded")
	return env.Merge(fileValues), true, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
