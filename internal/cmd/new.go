package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-crudgen/internal/output"
	"github.com/goliatone/go-crudgen/internal/wizard"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

// promptDriver builds the driver the new command prompts through.
var promptDriver = func(cmd *cobra.Command) wizard.PromptDriver {
	return wizard.NewSurveyDriver(cmd.ErrOrStderr())
}

type newFlags struct {
	out   string
	name  string
	force bool
}

// NewNewCmd creates the new command.
func NewNewCmd() *cobra.Command {
	var nf newFlags

	c := &cobra.Command{
		Use:   "new",
		Short: "Describe an entity interactively and save it as a schema document",
		Example: `  crudgen new
  crudgen new --name Order --out order.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, nf)
		},
	}

	c.Flags().StringVar(&nf.out, "out", "", "File to write the schema to (default stdout)")
	c.Flags().StringVar(&nf.name, "name", "", "Default entity name")
	c.Flags().BoolVar(&nf.force, "force", false, "Overwrite the output file if it exists")

	return c
}

func runNew(cmd *cobra.Command, nf newFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if nf.out != "" && !nf.force {
		if _, err := os.Stat(nf.out); err == nil {
			return &ExitError{Err: fmt.Errorf("%s already exists (use --force to overwrite)", nf.out), Code: ExitGeneralError}
		}
	}

	var options []wizard.Option
	if nf.name != "" {
		options = append(options, wizard.WithName(nf.name))
	}
	created, err := wizard.Run(ctx, promptDriver(cmd), options...)
	if err != nil {
		return err
	}

	data, err := schema.Marshal(created)
	if err != nil {
		return err
	}
	if nf.out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(nf.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", nf.out, err)
	}
	output.Info("saved entity", "entity", created.Name, "file", nf.out)
	return nil
}
