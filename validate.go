package nasc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/toutaio/toutago-nasc-container/logger"
)

// ValidationFailure is one registration that could not be resolved.
type ValidationFailure struct {
	ServiceType reflect.Type
	Lifetime    Lifetime
	Err         error
}

// ValidationReport is the outcome of ValidateAll.
type ValidationReport struct {
	// Checked is the number of registrations that were resolved.
	Checked  int
	Failures []ValidationFailure
}

// OK reports whether every registration resolved.
func (r *ValidationReport) OK() bool {
	return len(r.Failures) == 0
}

// Failed reports whether service is among the failures.
func (r *ValidationReport) Failed(service interface{}) bool {
	t, err := serviceTypeOf(service)
	if err != nil {
		return false
	}
	for _, f := range r.Failures {
		if f.ServiceType == t {
			return true
		}
	}
	return false
}

// Err returns nil when validation passed, otherwise a *ValidationError holding
// every failure.
func (r *ValidationReport) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}
	return &ValidationError{Errors: errs}
}

func (r *ValidationReport) String() string {
	if r.OK() {
		return fmt.Sprintf("%d services validated", r.Checked)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d services failed validation:", len(r.Failures), r.Checked)
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  %v (%s): %v", f.ServiceType, f.Lifetime, f.Err)
	}
	return b.String()
}

// ValidateAll resolves every registration once and reports each one that
// fails. Scoped services are resolved in a throwaway scope that is disposed
// afterwards, and transients are disposed right after they are built.
// Singletons built here stay cached.
//
// Use it at startup to fail fast on a broken registration graph:
//
//	if err := container.ValidateAll().Err(); err != nil {
//	    log.Fatal(err)
//	}
func (c *Container) ValidateAll() *ValidationReport {
	_, span := c.tracer.Start(context.Background(), spanValidate)
	defer span.End()

	report := &ValidationReport{}
	if c.closed.Load() {
		report.Failures = append(report.Failures, ValidationFailure{Err: ErrContainerClosed})
		span.SetStatus(codes.Error, ErrContainerClosed.Error())
		return report
	}

	scope := c.CreateScope()
	defer scope.Dispose()

	for _, t := range c.registry.Types() {
		d, ok := c.registry.Lookup(t)
		if !ok {
			continue
		}
		report.Checked++

		instance, err := c.newResolution(scope).resolve(t)
		if err != nil {
			report.Failures = append(report.Failures, ValidationFailure{
				ServiceType: t,
				Lifetime:    Lifetime(d.Lifetime),
				Err:         err,
			})
			c.log.Warn("service failed validation", logger.Fields(
				logger.FieldService, t,
				logger.FieldLifetime, d.Lifetime,
				logger.FieldError, err.Error(),
			))
			continue
		}

		// Nothing else owns a transient built only to be checked.
		if Lifetime(d.Lifetime) == LifetimeTransient {
			if cerr := disposeInstance(instance); cerr != nil {
				c.log.Error("cleanup failed", logger.Fields(
					logger.FieldService, t,
					logger.FieldInstance, fmt.Sprintf("%T", instance),
					logger.FieldError, cerr.Error(),
				))
			}
		}
	}

	span.SetAttributes(
		attribute.Int(attrChecked, report.Checked),
		attribute.Int(attrFailures, len(report.Failures)),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, "validation failed")
	}

	c.log.Info("container validated", logger.Fields(
		logger.FieldCount, report.Checked,
		"failures", len(report.Failures),
	))
	return report
}
