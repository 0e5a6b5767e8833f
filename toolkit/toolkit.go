package toolkit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// --- Toolkit Struct and Methods ---

// Toolkit is the registry of tools available to a conversation.
// It maps unique names to Descriptors, remembers registration order for schema listings,
// and never silently overwrites an entry: a colliding name is suffixed with the lowest
// unused integer ("name_1", "name_2", ...).
//
// A Toolkit is not safe for concurrent registration; populate it before handing it to a
// Dispatcher.
type Toolkit struct {
	name   string                 // Name of this toolkit instance
	order  []string               // Registered names in insertion order
	tools  map[string]*Descriptor // Registry of descriptors mapped by resolved name
	logger zerolog.Logger
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Toolkit) {
		t.logger = logger
	}
}

// New creates an empty Toolkit with the provided name.
//
// Example:
//
//	tk := toolkit.New("math")
//	name, err := tk.Register(sumTool)
func New(name string, opts ...Option) *Toolkit {
	t := &Toolkit{
		name:   name,
		tools:  make(map[string]*Descriptor),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register inserts d and returns the name it was stored under.
//
// Behavior:
//   - A nil descriptor is rejected with a registration error
//   - If d's name is free it is used as is
//   - Otherwise the first free "name_k" for k = 1, 2, ... is used, and the stored
//     descriptor reports that resolved name
//
// Existing entries are never replaced.
func (t *Toolkit) Register(d *Descriptor) (string, error) {
	if d == nil {
		return "", wrapError(KindRegistration, ErrRegistration, "cannot register a nil tool")
	}
	name := d.name
	if _, taken := t.tools[name]; taken {
		for k := 1; ; k++ {
			candidate := fmt.Sprintf("%s_%d", d.name, k)
			if _, taken := t.tools[candidate]; !taken {
				name = candidate
				break
			}
		}
		t.logger.Warn().Str("toolkit", t.name).Str("tool", d.name).Str("resolved", name).Msg("tool name collision, registered under a suffixed name")
		d = d.renamed(name)
	}
	t.tools[name] = d
	t.order = append(t.order, name)
	t.logger.Debug().Str("toolkit", t.name).Str("tool", name).Int("params", len(d.params)).Msg("tool registered")
	return name, nil
}

// MustRegister is like Register but panics on error. Intended for program setup.
func (t *Toolkit) MustRegister(d *Descriptor) string {
	name, err := t.Register(d)
	if err != nil {
		panic(err)
	}
	return name
}

// Lookup returns the descriptor registered under name.
func (t *Toolkit) Lookup(name string) (*Descriptor, bool) {
	d, ok := t.tools[name]
	return d, ok
}

// Names returns the registered names in registration order.
func (t *Toolkit) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of registered tools.
func (t *Toolkit) Len() int { return len(t.order) }

// Schemas returns the schema of every registered tool, in registration order.
// Each schema's name equals the key it is registered under.
func (t *Toolkit) Schemas() []Schema {
	out := make([]Schema, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.tools[name].Schema())
	}
	return out
}

// GetToolkitName returns the configured name of the toolkit instance.
func (t *Toolkit) GetToolkitName() string {
	return t.name
}

// GetToolkitDescription renders every schema as indented JSON, one block per tool,
// for inclusion between <tools></tools> in a system prompt.
func (t *Toolkit) GetToolkitDescription() string {
	blocks := make([]string, 0, len(t.order))
	for _, s := range t.Schemas() {
		b, err := json.MarshalIndent(s, "", "    ")
		if err != nil {
			t.logger.Error().Err(err).Str("tool", s.Name).Msg("marshal tool schema")
			continue
		}
		blocks = append(blocks, string(b))
	}
	return strings.Join(blocks, "\n\n")
}
