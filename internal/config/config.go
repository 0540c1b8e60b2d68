// Package config holds the tunable knobs the evaluator core consults at
// run time. It is the ambient configuration section a real embeddable
// module needs: the distilled spec leaves these as implicit constants,
// but an embedder needs functional-option constructors the way the
// teacher exposes them for its own run-time choices.
package config

import "github.com/goccy/go-yaml"

// Config collects every evaluator-wide setting left as an
// implementation choice.
type Config struct {
	// MaxCallDepth bounds host-stack recursion; exceeding it raises
	// stack-overflow instead of crashing the embedding process.
	MaxCallDepth int `yaml:"maxCallDepth"`

	// DisableDoubleToInt disables weak-int's Double→Int truncation path.
	DisableDoubleToInt bool `yaml:"disableDoubleToInt"`

	// EqualityEpsilon is the tolerance used by Double equality
	// comparisons.
	EqualityEpsilon float64 `yaml:"equalityEpsilon"`

	// TraceCalls enables a call-by-call trace written to the engine's
	// diagnostic output, useful when debugging closures/recursion.
	TraceCalls bool `yaml:"traceCalls"`
}

// Default returns the Config a fresh engine uses absent any overrides.
func Default() Config {
	return Config{
		MaxCallDepth:       220,
		DisableDoubleToInt: false,
		EqualityEpsilon:    1e-9,
		TraceCalls:         false,
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithMaxCallDepth overrides the recursion ceiling.
func WithMaxCallDepth(n int) Option { return func(c *Config) { c.MaxCallDepth = n } }

// WithDisableDoubleToInt toggles weak-int's Double→Int path.
func WithDisableDoubleToInt(disable bool) Option {
	return func(c *Config) { c.DisableDoubleToInt = disable }
}

// WithEqualityEpsilon overrides the Double equality tolerance.
func WithEqualityEpsilon(eps float64) Option { return func(c *Config) { c.EqualityEpsilon = eps } }

// WithTraceCalls toggles call tracing.
func WithTraceCalls(trace bool) Option { return func(c *Config) { c.TraceCalls = trace } }

// New builds a Config from Default plus opts, in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Load unmarshals a YAML document (e.g. a project's nox.yaml) over
// Default, so an embedder can ship a config file alongside a script
// without specifying every field.
func Load(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
