package lang

import "maps"

// Option applies a configuration option to config.
type Option func(config) config

type config struct {
	vars         map[string]any
	loopLimit    int
	includeDepth int
	onRead       func(path string)
}

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithVar predefines a variable, shadowing any builtin of the same name.
func WithVar(name string, value any) Option {
	return func(c config) config {
		c.vars = maps.Clone(c.vars)
		if c.vars == nil {
			c.vars = make(map[string]any)
		}

		c.vars[name] = value

		return c
	}
}

// WithLoopLimit sets the iteration count at which while loops are aborted.
func WithLoopLimit(n int) Option {
	return func(c config) config {
		if n > 0 {
			c.loopLimit = n
		}

		return c
	}
}

// WithIncludeDepth sets the maximum nesting of include statements.
func WithIncludeDepth(n int) Option {
	return func(c config) config {
		if n > 0 {
			c.includeDepth = n
		}

		return c
	}
}

// WithReadHook calls fn with the path of every file read by the read
// builtin.
func WithReadHook(fn func(path string)) Option {
	return func(c config) config {
		c.onRead = fn

		return c
	}
}
