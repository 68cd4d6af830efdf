package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-component"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	yamlOutput bool
	verbose    bool
	mode       string
	engine     string
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the component-inspect command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "component-inspect",
		Short: "Inspect component definition files",
		Long: `component-inspect loads a YAML component definition file, builds the
constructor chain it declares and reports resolved options or a constructed
instance.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.yamlOutput, "yaml", false, "output in YAML format")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log development warnings to stderr")
	rootCmd.PersistentFlags().StringVar(&flags.mode, "mode", "development", "runtime mode (development|production)")
	rootCmd.PersistentFlags().StringVar(&flags.engine, "engine", "expr", "computed expression engine (expr|cel|js)")

	rootCmd.AddCommand(newResolveCommand(flags))
	rootCmd.AddCommand(newConstructCommand(flags))
	return rootCmd
}

// loaded is a definition file built into constructors.
type loaded struct {
	runtime      *component.Runtime
	root         *component.Constructor
	setID        string
	constructors map[string]*component.Constructor
}

func (l *loaded) lookup(name string) (*component.Constructor, error) {
	ctor, ok := l.constructors[name]
	if !ok {
		return nil, fmt.Errorf("component %q is not defined", name)
	}
	return ctor, nil
}

func load(path string, flags *globalFlags, extra ...component.Option) (*loaded, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition file: %w", err)
	}
	defer file.Close()

	set, err := component.DecodeDefinitions(file)
	if err != nil {
		return nil, err
	}

	opts, err := flags.runtimeOptions()
	if err != nil {
		return nil, err
	}
	rt := component.NewRuntime(append(opts, extra...)...)
	root := rt.NewRoot(component.Options{})
	constructors, err := rt.Define(root, set.Components...)
	if err != nil {
		return nil, err
	}
	return &loaded{
		runtime:      rt,
		root:         root,
		setID:        set.ID.String(),
		constructors: constructors,
	}, nil
}

func (f *globalFlags) runtimeOptions() ([]component.Option, error) {
	var opts []component.Option

	switch f.mode {
	case "", "development":
		opts = append(opts, component.WithMode(component.ModeDevelopment))
	case "production":
		opts = append(opts, component.WithMode(component.ModeProduction))
	default:
		return nil, fmt.Errorf("unknown mode %q", f.mode)
	}

	switch f.engine {
	case "", "expr":
	case "cel":
		opts = append(opts, component.WithEvaluator(component.NewCELEvaluator()))
	case "js":
		if !component.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("js engine requires a build with the js_eval tag")
		}
		opts = append(opts, component.WithEvaluator(component.NewJSEvaluator()))
	default:
		return nil, fmt.Errorf("unknown engine %q", f.engine)
	}

	if f.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		opts = append(opts,
			component.WithDiagnostics(component.ZapDiagnostics{Logger: logger}),
			component.WithEvaluatorLogger(component.ZapEvaluatorLogger{Logger: logger}),
		)
	}
	return opts, nil
}
