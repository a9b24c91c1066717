package nasc

import (
	"context"
	"io"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/toutaio/toutago-nasc-container/logger"
)

// Disposable represents a service that requires cleanup.
// Services implementing this interface will have Dispose called
// when the scope or container that created them is disposed.
// Types that implement io.Closer instead are closed the same way.
//
// Example:
//
//	type DatabaseConnection struct {}
//	func (d *DatabaseConnection) Dispose() error {
//	    return d.connection.Close()
//	}
type Disposable interface {
	Dispose() error
}

// Initializable represents a service that requires initialization.
// Services implementing this interface will have Initialize called
// after being created.
//
// Example:
//
//	type Service struct {}
//	func (s *Service) Initialize() error {
//	    return s.setup()
//	}
type Initializable interface {
	Initialize() error
}

// Scope represents an isolated dependency resolution context.
// Scoped services resolve to one instance per scope, allowing for request-scoped
// or transaction-scoped dependencies. Singleton and transient services behave
// exactly as they do on the container.
//
// Example:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
//
//	// Scoped instances are unique to this scope
//	uow, err := nasc.Required[UnitOfWork](scope)
type Scope struct {
	id        string
	container *Container
	cache     *instanceCache
	log       *logger.Logger

	mu       sync.RWMutex
	disposed bool
}

func newScope(c *Container) *Scope {
	id := uuid.NewString()
	return &Scope{
		id:        id,
		container: c,
		cache:     newInstanceCache(),
		log:       c.log.WithFields(logger.Fields(logger.FieldScopeID, id)),
	}
}

// ID returns the unique identifier of the scope.
func (s *Scope) ID() string {
	return s.id
}

// Container returns the container that created the scope.
func (s *Scope) Container() *Container {
	return s.container
}

// GetService resolves service within this scope.
// It returns nil without an error when the service is not registered.
func (s *Scope) GetService(service interface{}) (interface{}, error) {
	return s.container.resolveTop(context.Background(), s, service, false)
}

// GetRequiredService resolves service within this scope and fails with
// *ServiceNotRegisteredError when it is not registered.
func (s *Scope) GetRequiredService(service interface{}) (interface{}, error) {
	return s.container.resolveTop(context.Background(), s, service, true)
}

// GetServiceContext is GetService with ctx as the parent of the resolution span.
func (s *Scope) GetServiceContext(ctx context.Context, service interface{}) (interface{}, error) {
	return s.container.resolveTop(ctx, s, service, false)
}

// MustGetService resolves service within this scope and panics on failure.
func (s *Scope) MustGetService(service interface{}) interface{} {
	instance, err := s.GetRequiredService(service)
	if err != nil {
		panic(err)
	}
	return instance
}

// IsRegistered reports whether service has a registration in the container.
func (s *Scope) IsRegistered(service interface{}) bool {
	return s.container.IsRegistered(service)
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// cached returns the scope's instance for t, building it at most once.
func (s *Scope) cached(t reflect.Type, build func() (interface{}, error)) (interface{}, error) {
	if s.Disposed() {
		return nil, ErrScopeDisposed
	}
	instance, err := s.cache.getOrCreate(t, build)
	if errors.Is(err, errCacheClosed) {
		// Built while the scope was being disposed.
		if cerr := disposeInstance(instance); cerr != nil {
			s.log.Error("cleanup failed", logger.Fields(
				logger.FieldInstance, reflect.TypeOf(instance).String(),
				logger.FieldError, cerr.Error(),
			))
		}
		return nil, ErrScopeDisposed
	}
	return instance, err
}

// Dispose releases the instances this scope created.
// Cleanup-capable instances are disposed in reverse creation order, each
// exactly once. Cleanup failures are logged and never stop the remaining
// cleanups. Calling Dispose again has no effect.
//
// Example:
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	_, span := s.container.tracer.Start(context.Background(), spanScopeDispose)
	defer span.End()

	instances := s.cache.drain(true)
	errs := disposeAll(instances, s.log)

	span.SetAttributes(
		attribute.String(attrScopeID, s.id),
		attribute.Int(attrInstances, len(instances)),
		attribute.Int(attrFailures, len(errs)),
	)
	s.log.Debug("scope disposed", logger.Fields(logger.FieldCount, len(instances)))
}

// isDisposable reports whether an instance has a cleanup hook.
func isDisposable(instance interface{}) bool {
	switch instance.(type) {
	case Disposable, io.Closer:
		return true
	}
	return false
}

// disposeInstance runs the cleanup hook of an instance, if any.
// A panicking hook is reported as an error.
func disposeInstance(instance interface{}) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("cleanup panicked: %v", p)
		}
	}()

	switch v := instance.(type) {
	case Disposable:
		return v.Dispose()
	case io.Closer:
		return v.Close()
	}
	return nil
}

// disposeAll disposes instances in reverse order, skipping repeats of the
// same instance, and logs every failure.
func disposeAll(instances []interface{}, log *logger.Logger) []error {
	var errs []error
	seen := make(map[interface{}]struct{})

	for i := len(instances) - 1; i >= 0; i-- {
		instance := instances[i]
		if !isDisposable(instance) {
			continue
		}
		if reflect.TypeOf(instance).Kind() == reflect.Ptr {
			if _, dup := seen[instance]; dup {
				continue
			}
			seen[instance] = struct{}{}
		}

		if err := disposeInstance(instance); err != nil {
			err = errors.WithMessagef(err, "disposing %T", instance)
			log.Error("cleanup failed", logger.Fields(
				logger.FieldInstance, reflect.TypeOf(instance).String(),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, err)
		}
	}
	return errs
}
