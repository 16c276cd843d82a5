package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	crudgen "github.com/goliatone/go-crudgen"
	"github.com/goliatone/go-crudgen/internal/output"
	"github.com/goliatone/go-crudgen/pkg/generator"
)

// NewTargetsCmd creates the targets command.
func NewTargetsCmd() *cobra.Command {
	var withOpenAPI bool

	c := &cobra.Command{
		Use:   "targets",
		Short: "List the available generation targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []crudgen.Option
			if withOpenAPI {
				opts = append(opts, crudgen.WithOpenAPI())
			}
			gen, err := crudgen.NewGenerator(opts...)
			if err != nil {
				return err
			}

			tbl := output.NewTable("TARGET", "DESCRIPTION")
			registry := gen.Registry()
			for _, name := range registry.Ordered() {
				emitter, err := registry.Get(name)
				if err != nil {
					return err
				}
				desc := ""
				if d, ok := emitter.(generator.Describer); ok {
					desc = d.Description()
				}
				tbl.Row(name, desc)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
			return err
		},
	}

	c.Flags().BoolVar(&withOpenAPI, "openapi", false, "Include the OpenAPI document target")
	return c
}
