package keymap

// Binding represents a single key-to-action mapping.
//
// A binding is data only: Action names a handler registered with the
// dispatcher, either a built-in operation tag ("line.accept") or a
// generated name for a user-supplied closure.
type Binding struct {
	// Action is the handler to execute.
	// Examples: "cursor.left", "line.accept", "history.prev"
	Action string

	// Description documents the binding. It is shown in diagnostics
	// and used to recognize digit-argument re-entry.
	Description string

	// Args are fixed arguments for the action.
	Args map[string]any
}

// NewBinding creates a binding for the given action.
func NewBinding(action, description string) Binding {
	return Binding{Action: action, Description: description}
}

// WithArgs sets fixed arguments for this binding.
func (b Binding) WithArgs(args map[string]any) Binding {
	b.Args = args
	return b
}

// IsZero returns true if the binding is empty.
func (b Binding) IsZero() bool {
	return b.Action == ""
}
