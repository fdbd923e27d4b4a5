package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
)

// validateCmd represents the validate command.
var validateCmd = newValidateCmd()

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the mapping template against the datasource columns",
		Long:  validateLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Validate(cmd.Context(), domain.ValidateArgs{
				Template: viper.GetString(mappingFileConfigKey),
				Source:   sourceArgs(),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
