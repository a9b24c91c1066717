package nasc

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/toutaio/toutago-nasc-container"

// Span names.
const (
	spanResolve      = "nasc.resolve"
	spanValidate     = "nasc.validate"
	spanScopeDispose = "nasc.scope.dispose"
	spanClose        = "nasc.close"
)

// Span attribute keys.
const (
	attrServiceType = "nasc.service_type"
	attrScopeID     = "nasc.scope_id"
	attrRequired    = "nasc.required"
	attrInstances   = "nasc.instances"
	attrFailures    = "nasc.failures"
	attrChecked     = "nasc.checked"
)

func noopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(tracerName)
}

func globalTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
