package smog

import (
	"go.uber.org/zap"

	"github.com/toyz/smog/internal/registry"
)

// Option configures a Factory.
type Option func(*options)

type options struct {
	prefix   string
	seed     string
	logger   *zap.Logger
	registry *registry.Generated
}

// WithPropertyPrefix sets the method prefix of property operations
// ("Has" by default).
func WithPropertyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithSeedMethod sets the name of seed operations ("Like" by default).
func WithSeedMethod(name string) Option {
	return func(o *options) {
		o.seed = name
	}
}

// WithLogger enables debug logging of synthesis.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func withRegistry(r *registry.Generated) Option {
	return func(o *options) {
		o.registry = r
	}
}
