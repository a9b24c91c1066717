package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/toutaio/toutago-nasc-container/logger"
)

// DefaultName is the service name used for container logs when none is configured.
const DefaultName = "nasc"

// Config holds the container settings.
type Config struct {
	// Name is attached to every log entry as the service field.
	Name string `yaml:"name" mapstructure:"name" validate:"required,max=64"`

	// Strict makes a second registration of the same service type an error.
	Strict bool `yaml:"strict" mapstructure:"strict"`

	// ValidateOnBoot runs ValidateAll after providers boot and fails the boot on any error.
	ValidateOnBoot bool `yaml:"validate_on_boot" mapstructure:"validate_on_boot"`

	// Tracing enables spans through the global OpenTelemetry tracer provider.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills in unset values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	c.Logging.ApplyDefaults()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "config validation failed")
		}
		messages := make([]string, 0, len(verrs))
		for _, e := range verrs {
			messages = append(messages, formatFieldError(e))
		}
		return errors.Errorf("invalid config: %s", strings.Join(messages, "; "))
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, e.Tag())
	}
}
