package nasc

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/toutaio/toutago-nasc-container/logger"
	"github.com/toutaio/toutago-nasc-container/registry"
)

// Container is the dependency injection container.
// It holds registrations and resolves services in a thread-safe manner.
type Container struct {
	registry   *registry.Registry
	singletons *instanceCache
	fields     *fieldCache

	providersMu sync.Mutex
	providers   []*providerEntry

	strict         bool
	validateOnBoot bool
	log            *logger.Logger
	tracer         trace.Tracer
	closed         atomic.Bool
}

// New creates a new container.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := nasc.New()
//	// or with options:
//	container := nasc.New(nasc.WithLogger(log), nasc.WithStrictRegistration())
func New(options ...Option) *Container {
	c := &Container{
		registry:   registry.New(),
		singletons: newInstanceCache(),
		fields:     newFieldCache(),
		log:        logger.Nop(),
		tracer:     noopTracer(),
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	return c
}

// Register registers implementation for service with the given lifetime.
//
// service is a type token: a nil pointer to an interface such as (*Logger)(nil),
// a reflect.Type (see Key), or any other value whose type is the service type.
//
// implementation is one of:
//   - a FactoryFunc or func(Resolver) (interface{}, error)
//   - a constructor function, whose parameters are resolved from the container
//   - an *ImplementationSpec built with Implementation
//   - a pointer to struct such as &Impl{}, built from its zero value with
//     `inject` fields populated
//
// Registering a service type twice keeps the first registration. The second
// call is ignored, or fails with *DuplicateRegistrationError when the container
// was created WithStrictRegistration.
func (c *Container) Register(service, implementation interface{}, lifetime Lifetime) error {
	serviceType, err := serviceTypeOf(service)
	if err != nil {
		return &InvalidRegistrationError{Reason: err.Error()}
	}

	d, err := describe(serviceType, implementation, lifetime)
	if err != nil {
		return wrapRegistration(err, serviceType)
	}
	return c.add(d)
}

// RegisterSingleton registers a service whose single instance is created on
// first resolution and shared for the lifetime of the container.
//
// Example:
//
//	container.RegisterSingleton((*Database)(nil), NewPostgresDB)
func (c *Container) RegisterSingleton(service, implementation interface{}) error {
	return c.Register(service, implementation, LifetimeSingleton)
}

// RegisterTransient registers a service that is created anew on every resolution.
//
// Example:
//
//	container.RegisterTransient((*Handler)(nil), NewHandler)
func (c *Container) RegisterTransient(service, implementation interface{}) error {
	return c.Register(service, implementation, LifetimeTransient)
}

// RegisterScoped registers a service that is created once per scope.
//
// Example:
//
//	container.RegisterScoped((*UnitOfWork)(nil), NewUnitOfWork)
//	scope := container.CreateScope()
//	defer scope.Dispose()
//	uow, err := nasc.Required[UnitOfWork](scope)
func (c *Container) RegisterScoped(service, implementation interface{}) error {
	return c.Register(service, implementation, LifetimeScoped)
}

// RegisterSingletonInstance registers a pre-built instance as a singleton.
// The container never disposes it; the caller keeps ownership.
func (c *Container) RegisterSingletonInstance(service, instance interface{}) error {
	serviceType, err := serviceTypeOf(service)
	if err != nil {
		return &InvalidRegistrationError{Reason: err.Error()}
	}

	d, err := describeInstance(serviceType, instance)
	if err != nil {
		return wrapRegistration(err, serviceType)
	}
	return c.add(d)
}

func (c *Container) add(d *registry.Descriptor) error {
	if c.closed.Load() {
		return ErrContainerClosed
	}

	err := c.registry.Register(d)
	var dup *registry.DuplicateDescriptorError
	if errors.As(err, &dup) {
		if c.strict {
			return &DuplicateRegistrationError{Type: d.ServiceType}
		}
		c.log.Debug("duplicate registration ignored", logger.Fields(
			logger.FieldService, d.ServiceType,
			logger.FieldLifetime, d.Lifetime,
		))
		return nil
	}
	if err != nil {
		return wrapRegistration(err, d.ServiceType)
	}

	c.log.Debug("service registered", logger.Fields(
		logger.FieldService, d.ServiceType,
		logger.FieldLifetime, d.Lifetime,
		logger.FieldOperation, d.Kind(),
	))
	return nil
}

// GetService resolves service. It returns nil without an error when the
// service is not registered, and an error when it is registered but cannot
// be constructed.
//
// Scoped services resolved here, outside any scope, are cached container-wide.
func (c *Container) GetService(service interface{}) (interface{}, error) {
	return c.resolveTop(context.Background(), nil, service, false)
}

// GetServiceContext resolves service using the scope carried by ctx, if any.
// A scope created by another container is ignored. ctx also parents the
// resolution span.
func (c *Container) GetServiceContext(ctx context.Context, service interface{}) (interface{}, error) {
	return c.resolveTop(ctx, c.scopeFrom(ctx), service, false)
}

// scopeFrom returns the scope bound to ctx when this container created it.
func (c *Container) scopeFrom(ctx context.Context) *Scope {
	scope, ok := ScopeFromContext(ctx)
	if !ok || scope.container != c {
		return nil
	}
	return scope
}

// GetRequiredService resolves service and fails with *ServiceNotRegisteredError
// when it is not registered.
//
// Example:
//
//	svc, err := container.GetRequiredService((*Logger)(nil))
//	if err != nil {
//	    return err
//	}
//	log := svc.(Logger)
func (c *Container) GetRequiredService(service interface{}) (interface{}, error) {
	return c.resolveTop(context.Background(), nil, service, true)
}

// MustGetService resolves service and panics on failure.
// Use it during application bootstrap where a missing service is fatal.
func (c *Container) MustGetService(service interface{}) interface{} {
	instance, err := c.GetRequiredService(service)
	if err != nil {
		panic(err)
	}
	return instance
}

func (c *Container) resolveTop(ctx context.Context, scope *Scope, service interface{}, required bool) (interface{}, error) {
	t, err := serviceTypeOf(service)
	if err != nil {
		return nil, err
	}
	if c.closed.Load() {
		return nil, ErrContainerClosed
	}
	if scope != nil && scope.Disposed() {
		return nil, ErrScopeDisposed
	}

	_, span := c.tracer.Start(ctx, spanResolve, trace.WithAttributes(
		attribute.String(attrServiceType, t.String()),
		attribute.Bool(attrRequired, required),
	))
	defer span.End()
	if scope != nil {
		span.SetAttributes(attribute.String(attrScopeID, scope.id))
	}

	instance, err := c.newResolution(scope).resolve(t)
	if err != nil {
		if !required && isNotRegistered(err, t) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return instance, nil
}

// cached returns the container-wide instance for t, building it at most once.
func (c *Container) cached(t reflect.Type, build func() (interface{}, error)) (interface{}, error) {
	instance, err := c.singletons.getOrCreate(t, build)
	if errors.Is(err, errCacheClosed) {
		if cerr := disposeInstance(instance); cerr != nil {
			c.log.Error("cleanup failed", logger.Fields(
				logger.FieldInstance, reflect.TypeOf(instance).String(),
				logger.FieldError, cerr.Error(),
			))
		}
		return nil, ErrContainerClosed
	}
	return instance, err
}

// CreateScope creates a new dependency resolution scope.
// Scoped services resolve to one instance per scope.
//
// Example:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
func (c *Container) CreateScope() *Scope {
	s := newScope(c)
	s.log.Debug("scope created")
	return s
}

// IsRegistered reports whether service has a registration.
func (c *Container) IsRegistered(service interface{}) bool {
	t, err := serviceTypeOf(service)
	if err != nil {
		return false
	}
	return c.registry.Has(t)
}

// Descriptors returns a snapshot of every registration, sorted by service type name.
func (c *Container) Descriptors() []registry.Descriptor {
	return c.registry.Descriptors()
}

// Reset removes every registration, cached instance and provider.
// Cached instances are dropped without being disposed. A singleton whose
// construction is still running is returned to its caller but not cached,
// so Close never sees it.
func (c *Container) Reset() {
	c.registry.Reset()
	dropped := c.singletons.drain(false)
	c.fields.clear()

	c.providersMu.Lock()
	c.providers = nil
	c.providersMu.Unlock()

	c.log.Debug("container reset", logger.Fields(logger.FieldCount, len(dropped)))
}

// Close disposes every instance the container created outside of scopes, in
// reverse creation order. Pre-built instances registered with
// RegisterSingletonInstance are left alone. Every cleanup runs even when some
// fail; the failures are returned together as a *CleanupError.
//
// After Close the container refuses registrations and resolutions.
func (c *Container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	_, span := c.tracer.Start(context.Background(), spanClose)
	defer span.End()

	instances := c.singletons.drain(true)
	errs := disposeAll(instances, c.log)

	span.SetAttributes(
		attribute.Int(attrInstances, len(instances)),
		attribute.Int(attrFailures, len(errs)),
	)
	c.log.Debug("container closed", logger.Fields(logger.FieldCount, len(instances)))

	if len(errs) > 0 {
		span.SetStatus(codes.Error, "cleanup failed")
		return &CleanupError{Errors: errs}
	}
	return nil
}
