package nasc

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/toutaio/toutago-nasc-container/config"
	"github.com/toutaio/toutago-nasc-container/logger"
)

// Option is a function that configures a Container.
type Option func(*Container) error

// WithLogger sets the logger used for container diagnostics.
// Without it the container logs nothing.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) error {
		if l == nil {
			return &InvalidRegistrationError{Reason: "logger cannot be nil"}
		}
		c.log = l.WithComponent("nasc")
		return nil
	}
}

// WithStrictRegistration makes registering an already registered service type
// fail with *DuplicateRegistrationError instead of being ignored.
func WithStrictRegistration() Option {
	return func(c *Container) error {
		c.strict = true
		return nil
	}
}

// WithTracerProvider emits resolution, validation and disposal spans through tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Container) error {
		if tp == nil {
			return &InvalidRegistrationError{Reason: "tracer provider cannot be nil"}
		}
		c.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// WithValidateOnBoot makes BootProviders run ValidateAll once every provider
// has booted, and return the validation error if any service fails.
func WithValidateOnBoot() Option {
	return func(c *Container) error {
		c.validateOnBoot = true
		return nil
	}
}

// WithConfig applies loaded settings: logging, strict registration,
// validation on boot, and tracing through the global tracer provider.
func WithConfig(cfg *config.Config) Option {
	return func(c *Container) error {
		if cfg == nil {
			return &InvalidRegistrationError{Reason: "config cannot be nil"}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		c.log = logger.New(&cfg.Logging, cfg.Name).WithComponent("nasc")
		c.strict = cfg.Strict
		c.validateOnBoot = cfg.ValidateOnBoot
		if cfg.Tracing {
			c.tracer = globalTracer()
		}
		return nil
	}
}
