package commands

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-component"
	"github.com/goliatone/go-component/pkg/activity"
	"github.com/spf13/cobra"
)

type constructOutput struct {
	UID      uint64         `json:"uid" yaml:"uid"`
	Name     string         `json:"name" yaml:"name"`
	Phase    string         `json:"phase" yaml:"phase"`
	Mounted  bool           `json:"mounted" yaml:"mounted"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Computed map[string]any `json:"computed,omitempty" yaml:"computed,omitempty"`
	Events   []string       `json:"events" yaml:"events"`
}

func newConstructCommand(flags *globalFlags) *cobra.Command {
	var (
		props []string
		el    string
	)
	cmd := &cobra.Command{
		Use:   "construct <file> <name>",
		Short: "Construct an instance and print its state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			propsData, err := parseProps(props)
			if err != nil {
				return err
			}

			capture := &activity.CaptureHook{}
			defs, err := load(args[0], flags, component.WithActivityHooks(activity.Hooks{capture}))
			if err != nil {
				return err
			}
			ctor, err := defs.lookup(args[1])
			if err != nil {
				return err
			}

			options := component.Options{}
			if len(propsData) > 0 {
				options["propsData"] = propsData
			}
			if el != "" {
				options["el"] = el
			}
			vm, err := ctor.New(options)
			if err != nil {
				return err
			}

			out := constructOutput{
				UID:     vm.UID(),
				Name:    vm.Name(),
				Phase:   vm.Phase().String(),
				Mounted: vm.IsMounted(),
				Props:   printableMap(vm.Props()),
				Data:    printableMap(vm.Data()),
				Events:  capture.Verbs(),
			}
			if names := vm.ComputedNames(); len(names) > 0 {
				out.Computed = make(map[string]any, len(names))
				for _, name := range names {
					value, err := vm.Computed(name)
					if err != nil {
						return err
					}
					out.Computed[name] = printable(value)
				}
			}
			return write(cmd.OutOrStdout(), flags.yamlOutput, out)
		},
	}
	cmd.Flags().StringArrayVar(&props, "prop", nil, "prop value as key=value (repeatable)")
	cmd.Flags().StringVar(&el, "el", "", "mount target; mounts the instance when set")
	return cmd
}

func parseProps(entries []string) (map[string]any, error) {
	props := make(map[string]any, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --prop %q, expected key=value", entry)
		}
		props[key] = value
	}
	return props, nil
}
