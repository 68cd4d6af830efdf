package commands

import (
	"github.com/spf13/cobra"
)

type resolveOutput struct {
	Set         string         `json:"set" yaml:"set"`
	Component   string         `json:"component" yaml:"component"`
	Constructor string         `json:"constructor" yaml:"constructor"`
	Depth       int            `json:"depth" yaml:"depth"`
	Options     map[string]any `json:"options" yaml:"options"`
}

func newResolveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <name>",
		Short: "Print the resolved options of a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := load(args[0], flags)
			if err != nil {
				return err
			}
			ctor, err := defs.lookup(args[1])
			if err != nil {
				return err
			}
			options := ctor.Resolve()
			return write(cmd.OutOrStdout(), flags.yamlOutput, resolveOutput{
				Set:         defs.setID,
				Component:   args[1],
				Constructor: ctor.String(),
				Depth:       ctor.Depth(),
				Options:     printableMap(options),
			})
		},
	}
}
