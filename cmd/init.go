package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default ocdsmap.yaml configuration file",
		Long: `Create an ocdsmap.yaml in the current working directory populated with the
current defaults so the datasource, mapping template and publisher can be edited
manually. A .env file holding the datasource connection is created next to it
when none exists, so credentials stay out of ocdsmap.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			envPath := filepath.Join(configFolderPath, envFileName)

			written, err := writeEnvTemplate(envPath)
			if err != nil {
				return fmt.Errorf("failed to write env file: %w", err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			if written {
				cmd.Printf("Wrote %s\n", envPath)
			}

			return nil
		},
	}
}

// writeEnvTemplate writes the secret-bearing keys to path unless the file exists.
func writeEnvTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	env := map[string]string{
		envKey(connectionConfigKey): viper.GetString(connectionConfigKey),
	}

	if err := godotenv.Write(env, path); err != nil {
		return false, err
	}

	return true, nil
}

// envKey returns the environment variable viper reads for key.
func envKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func init() {
	rootCmd.AddCommand(initCmd)
}
