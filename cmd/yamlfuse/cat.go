package main

import (
	"fmt"

	"github.com/shapestone/yamlfuse/pkg/yaml"
	"github.com/spf13/cobra"
)

func newCatCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Resolve every include and print the flattened document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			doc, err := yaml.ParseFile(file, yaml.Flags{
				GenPresentation:       true,
				AllowUnboundVariables: g.allowUnbound,
			})
			if err != nil {
				return printParseError(cmd, file, err)
			}
			out, err := doc.Pack()
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
