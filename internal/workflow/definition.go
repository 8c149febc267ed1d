package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
)

// State types.
const (
	TypeTask    = "Task"
	TypePass    = "Pass"
	TypeSucceed = "Succeed"
	TypeFail    = "Fail"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Definition is an Amazon States Language document restricted to the state
// types the pipeline uses.
type Definition struct {
	Comment        string           `json:"Comment,omitempty"`
	StartAt        string           `json:"StartAt" validate:"required"`
	TimeoutSeconds int              `json:"TimeoutSeconds,omitempty" validate:"gte=0"`
	States         map[string]State `json:"States" validate:"required,min=1,dive"`
}

// State is a single state in a Definition.
type State struct {
	Type           string         `json:"Type" validate:"required,oneof=Task Pass Succeed Fail"`
	Comment        string         `json:"Comment,omitempty"`
	Resource       string         `json:"Resource,omitempty" validate:"required_if=Type Task"`
	Parameters     map[string]any `json:"Parameters,omitempty"`
	InputPath      string         `json:"InputPath,omitempty"`
	ResultPath     string         `json:"ResultPath,omitempty"`
	OutputPath     string         `json:"OutputPath,omitempty"`
	TimeoutSeconds int            `json:"TimeoutSeconds,omitempty" validate:"gte=0"`
	Next           string         `json:"Next,omitempty"`
	End            bool           `json:"End,omitempty"`
	Error          string         `json:"Error,omitempty"`
	Cause          string         `json:"Cause,omitempty"`
}

// Terminal reports whether execution stops after s.
func (s State) Terminal() bool {
	return s.End || s.Type == TypeSucceed || s.Type == TypeFail
}

// Parse decodes and validates a definition.
func Parse(data []byte) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads and parses the definition at path.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data)
}

// Validate checks field constraints and the state graph: StartAt names a state,
// transitions target existing states, each state has exactly one way out,
// every state is reachable, and at least one state is terminal.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if _, ok := d.States[d.StartAt]; !ok {
		return fmt.Errorf("%w: StartAt %q is not a state", ErrInvalidDefinition, d.StartAt)
	}

	terminal := false
	for _, name := range d.names() {
		s := d.States[name]

		switch s.Type {
		case TypeSucceed, TypeFail:
			if s.Next != "" || s.End {
				return fmt.Errorf("%w: %s state %q cannot declare Next or End", ErrInvalidDefinition, s.Type, name)
			}
		default:
			if (s.Next != "") == s.End {
				return fmt.Errorf("%w: state %q must declare exactly one of Next or End", ErrInvalidDefinition, name)
			}
		}

		if s.Next != "" {
			if _, ok := d.States[s.Next]; !ok {
				return fmt.Errorf("%w: state %q transitions to unknown state %q", ErrInvalidDefinition, name, s.Next)
			}
		}

		if s.Terminal() {
			terminal = true
		}
	}

	if !terminal {
		return fmt.Errorf("%w: no terminal state", ErrInvalidDefinition)
	}

	reached := d.reachable()
	for _, name := range d.names() {
		if !reached[name] {
			return fmt.Errorf("%w: state %q is unreachable", ErrInvalidDefinition, name)
		}
	}

	return nil
}

// JSON renders the definition as indented JSON.
func (d *Definition) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func (d *Definition) names() []string {
	names := make([]string, 0, len(d.States))
	for name := range d.States {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (d *Definition) reachable() map[string]bool {
	reached := make(map[string]bool, len(d.States))
	for name := d.StartAt; name != "" && !reached[name]; {
		reached[name] = true
		name = d.States[name].Next
	}
	return reached
}
