package main

import (
	"fmt"
	"io"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/pkg/yaml"
	"github.com/spf13/cobra"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	var showPresentation bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the parsed AST, and optionally its presentation envelope",
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

			printNode(cmd.OutOrStdout(), doc.Root, "", "")

			if showPresentation {
				out, err := doc.Envelope().MarshalYAMLBytes()
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				cmd.OutOrStdout().Write(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPresentation, "presentation", false, "also dump the presentation envelope as YAML")
	return cmd
}

// printNode renders n as an indented tree, one line per scalar or
// collection header. path labels the line ("" for the root); prefix
// is the indentation carried in from the caller.
func printNode(w io.Writer, n *ast.Node, prefix, path string) {
	label := path
	if label == "" {
		label = "."
	}
	tag := ""
	if n.Tag != nil {
		tag = " !" + n.Tag.Name
	}
	switch n.Kind {
	case ast.Scalar:
		fmt.Fprintf(w, "%s%s:%s %s\n", prefix, label, tag, n.RawText())
	case ast.Sequence:
		fmt.Fprintf(w, "%s%s:%s [%d]\n", prefix, label, tag, len(n.Items))
		for i, item := range n.Items {
			printNode(w, item, prefix+"  ", fmt.Sprintf("[%d]", i))
		}
	case ast.Mapping:
		fmt.Fprintf(w, "%s%s:%s {%d}\n", prefix, label, tag, len(n.Pairs))
		for _, pair := range n.Pairs {
			key := pair.Key
			if pair.Variable {
				key = "$" + key
			}
			printNode(w, pair.Value, prefix+"  ", key)
		}
	}
}
