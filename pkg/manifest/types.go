package manifest

// Manifest is the parsed library metadata. Values are JSON-compatible:
// map[string]any, []any, string, bool, nil and json.Number for numbers.
type Manifest map[string]any

// Name returns the name field when it is a string
func (m Manifest) Name() string {
	name, _ := m["name"].(string)
	return name
}

// Version returns the version field when it is a string
func (m Manifest) Version() string {
	version, _ := m["version"].(string)
	return version
}

// Description returns the description field when it is a string
func (m Manifest) Description() string {
	description, _ := m["description"].(string)
	return description
}

// Main returns the string entries of the main field. A single string is
// returned as a one-element slice; non-string array entries are skipped.
func (m Manifest) Main() []string {
	switch v := m["main"].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		files := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				files = append(files, s)
			}
		}
		return files
	}
	return nil
}

// Issues holds the outcome of running the validation rules
type Issues struct {
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Valid reports whether no blocking error was found
func (i Issues) Valid() bool {
	return len(i.Errors) == 0
}

// Options controls which steps Parse applies
type Options struct {
	Normalize bool `json:"normalize" yaml:"normalize"`
	Validate  bool `json:"validate" yaml:"validate"`
	Clone     bool `json:"clone" yaml:"clone"`
}

// DefaultOptions returns options with validation and normalization enabled
// and cloning disabled
func DefaultOptions() Options {
	return Options{
		Normalize: true,
		Validate:  true,
		Clone:     false,
	}
}

// Option overrides a single field of Options
type Option func(*Options)

// WithNormalize toggles normalization
func WithNormalize(enabled bool) Option {
	return func(o *Options) { o.Normalize = enabled }
}

// WithValidate toggles validation
func WithValidate(enabled bool) Option {
	return func(o *Options) { o.Validate = enabled }
}

// WithClone toggles operating on a deep copy of the input
func WithClone(enabled bool) Option {
	return func(o *Options) { o.Clone = enabled }
}

// WithOptions replaces every field at once, typically from configuration
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

func resolveOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
