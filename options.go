package longjump

import "log/slog"

// Option configures a Thread.
type Option func(*config)

type config struct {
	name    string
	logger  *slog.Logger
	onFatal func(*ContractViolation)
}

func newConfig(opts []Option) config {
	c := config{name: "thread"}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// WithName sets the name the thread reports in log records and contract
// violations.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger the thread writes jump traces and contract
// violations to. A nil logger selects slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithFatalHandler installs a function invoked with every contract violation
// detected on the thread, after it was logged. The handler is expected to
// terminate the program; if it returns, the violation is raised as a panic.
func WithFatalHandler(f func(*ContractViolation)) Option {
	return func(c *config) {
		c.onFatal = f
	}
}
