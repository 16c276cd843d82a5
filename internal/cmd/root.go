// Package cmd provides the crudgen command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/output"
)

var (
	configFlag  string
	verboseFlag bool
)

// NewRootCmd creates the root command for the crudgen CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crudgen",
		Short: "Generate NestJS CRUD boilerplate from entity schemas",
		Long: `crudgen renders DTO, service, controller and Swagger descriptor sources
for each entity described in a YAML/JSON schema document or in the component
schemas of an OpenAPI document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLoggingTo(cmd.ErrOrStderr(), verboseFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default ./crudgen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewRenderCmd())
	rootCmd.AddCommand(NewNewCmd())
	rootCmd.AddCommand(NewTargetsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
