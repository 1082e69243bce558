package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, path, err := loadSettings(cmd, loadOptions{})
	if err != nil {
		return err
	}
	cmd.Printf("%s is valid\n", path)
	return nil
}
