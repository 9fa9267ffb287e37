package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shapestone/yamlfuse/pkg/yaml"
	"github.com/spf13/cobra"
)

func newPackCmd(g *globalFlags) *cobra.Command {
	var fileMode uint32

	cmd := &cobra.Command{
		Use:   "pack <file> <outdir>",
		Short: "Parse a document and repack it, writing included subtrees under outdir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, outdir := args[0], args[1]
			doc, err := yaml.ParseFile(file, yaml.Flags{
				GenPresentation:       true,
				AllowUnboundVariables: g.allowUnbound,
			})
			if err != nil {
				return printParseError(cmd, file, err)
			}

			env := yaml.NewPackEnv().SetOutdir(outdir).SetFileMode(os.FileMode(fileMode))
			out := filepath.Join(outdir, filepath.Base(file))
			if err := env.PackToFile(out, doc.Root, doc.Doc); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s\n", file, out)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&fileMode, "file-mode", 0o644, "permissions for written subfiles")
	return cmd
}
