package component

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Definition declares one component of a definition set. Extends names
// another definition of the same set, or a component already registered on
// the root; an empty Extends extends the root.
type Definition struct {
	Name    string         `yaml:"name" json:"name" validate:"required"`
	Extends string         `yaml:"extends,omitempty" json:"extends,omitempty" validate:"omitempty,nefield=Name"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// DefinitionSet is a decoded definition file.
type DefinitionSet struct {
	ID         uuid.UUID    `yaml:"-" json:"id"`
	Components []Definition `yaml:"components" json:"components"`
}

type definitionFile struct {
	ID         string       `yaml:"id"`
	Components []Definition `yaml:"components"`
}

var definitionValidator = validator.New()

// DecodeDefinitions reads a YAML definition file. The set id is taken from
// the file's id field and generated when absent.
func DecodeDefinitions(r io.Reader) (*DefinitionSet, error) {
	var file definitionFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &DefinitionSet{ID: uuid.New()}, nil
		}
		return nil, fmt.Errorf("component: decode definitions: %w", err)
	}

	set := &DefinitionSet{Components: file.Components}
	if id := strings.TrimSpace(file.ID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("component: definition set id %q: %w", id, err)
		}
		set.ID = parsed
	} else {
		set.ID = uuid.New()
	}
	return set, nil
}

// ValidateDefinitions checks a definition set on its own: every entry must
// pass validation, names must be unique and extends links between entries
// must not form a cycle. Extends targets outside the set are not checked.
func ValidateDefinitions(defs ...Definition) error {
	byName, order, err := indexDefinitions(defs)
	if err != nil {
		return err
	}
	return detectCycles(byName, order)
}

func indexDefinitions(defs []Definition) (map[string]Definition, []string, error) {
	byName := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if err := definitionValidator.Struct(def); err != nil {
			return nil, nil, &ConfigurationError{Definition: def.Name, Reason: "invalid definition", Err: err}
		}
		if _, exists := byName[def.Name]; exists {
			return nil, nil, &ConfigurationError{Definition: def.Name, Err: ErrDuplicateDefinition}
		}
		byName[def.Name] = def
		order = append(order, def.Name)
	}
	return byName, order, nil
}

// Define builds a constructor for every definition, extending root or the
// named definition, and registers each under its name on root. The whole set
// is validated before any constructor is created: invalid entries, duplicate
// names, unknown extends targets and extends cycles are reported as
// *ConfigurationError.
func (rt *Runtime) Define(root *Constructor, defs ...Definition) (map[string]*Constructor, error) {
	if root == nil {
		return nil, ErrNilConstructor
	}

	byName, order, err := indexDefinitions(defs)
	if err != nil {
		return nil, err
	}

	registered := root.Resolve().Components()
	for _, name := range order {
		target := byName[name].Extends
		if target == "" {
			continue
		}
		if _, ok := byName[target]; ok {
			continue
		}
		if _, ok := registered[target].(*Constructor); ok {
			continue
		}
		return nil, &ConfigurationError{
			Definition: name,
			Reason:     fmt.Sprintf("extends %q", target),
			Err:        ErrUnknownDefinition,
		}
	}

	if err := detectCycles(byName, order); err != nil {
		return nil, err
	}

	built := make(map[string]*Constructor, len(order))
	var build func(name string) *Constructor
	build = func(name string) *Constructor {
		if ctor, ok := built[name]; ok {
			return ctor
		}
		def := byName[name]
		parent := root
		switch {
		case def.Extends == "":
		case byName[def.Extends].Name != "":
			parent = build(def.Extends)
		default:
			parent = registered[def.Extends].(*Constructor)
		}
		opts := Options(def.Options).clone()
		if opts == nil {
			opts = Options{}
		}
		if opts.Name() == "" {
			opts["name"] = def.Name
		}
		ctor := parent.Extend(opts)
		built[name] = ctor
		return ctor
	}
	for _, name := range order {
		root.Component(name, build(name))
	}
	return built, nil
}

// detectCycles walks extends links depth first and reports the first cycle
// found, naming every definition on it.
func detectCycles(byName map[string]Definition, order []string) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(byName))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, entry := range path {
				if entry == name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			return &ConfigurationError{
				Definition: name,
				Reason:     strings.Join(cycle, " -> "),
				Err:        ErrCycle,
			}
		}
		state[name] = visiting
		path = append(path, name)
		if next := byName[name].Extends; next != "" {
			if _, local := byName[next]; local {
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range order {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
