package nasc

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/toutaio/toutago-nasc-container/logger"
	"github.com/toutaio/toutago-nasc-container/registry"
)

// Resolver is the read side of the container. Container, Scope and the
// resolver handed to factories all implement it.
type Resolver interface {
	// GetService returns the instance registered for service, or nil without
	// an error when the service is not registered.
	GetService(service interface{}) (interface{}, error)

	// GetRequiredService returns the instance registered for service, or a
	// *ServiceNotRegisteredError when it is not registered.
	GetRequiredService(service interface{}) (interface{}, error)

	// IsRegistered reports whether service has a registration.
	IsRegistered(service interface{}) bool
}

var (
	resolverType  = reflect.TypeOf((*Resolver)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil))
	scopeType     = reflect.TypeOf((*Scope)(nil))
)

// chain is the set of types under construction in one top-level request.
// It belongs to a single call chain and is never shared between goroutines.
// Factories that resolve concurrently each work on their own clone.
type chain struct {
	inFlight map[reflect.Type]struct{}
	path     []reflect.Type
}

func (c *chain) clone() *chain {
	inFlight := make(map[reflect.Type]struct{}, len(c.inFlight))
	for t := range c.inFlight {
		inFlight[t] = struct{}{}
	}
	return &chain{
		inFlight: inFlight,
		path:     append([]reflect.Type(nil), c.path...),
	}
}

// resolution carries one top-level request through nested resolutions.
type resolution struct {
	container *Container
	scope     *Scope
	chain     *chain
}

func (c *Container) newResolution(scope *Scope) *resolution {
	return &resolution{
		container: c,
		scope:     scope,
		chain:     &chain{inFlight: make(map[reflect.Type]struct{})},
	}
}

// withScope returns a resolution on the same chain bound to another scope.
func (r *resolution) withScope(scope *Scope) *resolution {
	return &resolution{container: r.container, scope: scope, chain: r.chain}
}

// root is the resolver that outlives the chain.
func (r *resolution) root() Resolver {
	if r.scope != nil {
		return r.scope
	}
	return r.container
}

func (r *resolution) enter(t reflect.Type) error {
	if _, ok := r.chain.inFlight[t]; ok {
		path := make([]reflect.Type, 0, len(r.chain.path)+1)
		path = append(path, r.chain.path...)
		path = append(path, t)
		return &CircularDependencyError{Type: t, Path: path}
	}
	r.chain.inFlight[t] = struct{}{}
	r.chain.path = append(r.chain.path, t)
	return nil
}

func (r *resolution) leave(t reflect.Type) {
	delete(r.chain.inFlight, t)
	r.chain.path = r.chain.path[:len(r.chain.path)-1]
}

// resolve produces the instance for t according to its lifetime.
// The cycle check happens before any instance lock is taken.
func (r *resolution) resolve(t reflect.Type) (interface{}, error) {
	d, ok := r.container.registry.Lookup(t)
	if !ok {
		return nil, &ServiceNotRegisteredError{Type: t}
	}

	if d.HasInstance {
		return d.Instance, nil
	}

	if err := r.enter(t); err != nil {
		return nil, err
	}
	defer r.leave(t)

	switch Lifetime(d.Lifetime) {
	case LifetimeSingleton:
		// Singletons never capture scoped instances.
		return r.container.cached(t, func() (interface{}, error) {
			return r.withScope(nil).construct(d)
		})

	case LifetimeScoped:
		if r.scope == nil {
			return r.container.cached(t, func() (interface{}, error) {
				return r.construct(d)
			})
		}
		return r.scope.cached(t, func() (interface{}, error) {
			return r.construct(d)
		})

	case LifetimeTransient:
		return r.construct(d)
	}

	return nil, &ResolutionError{Type: t, Context: fmt.Sprintf("unknown lifetime %q", d.Lifetime)}
}

// construct builds a new instance from a descriptor and initializes it.
func (r *resolution) construct(d *registry.Descriptor) (instance interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			cause, ok := p.(error)
			if !ok {
				cause = errors.Errorf("%v", p)
			}
			instance, err = nil, &ResolutionError{Type: d.ServiceType, Context: "construction panicked", Cause: cause}
		}
	}()

	if factory, ok := d.Factory.(FactoryFunc); ok {
		instance, err = r.invokeFactory(d, factory)
	} else {
		instance, err = r.invokeConstructors(d)
	}
	if err != nil {
		return nil, err
	}

	if initializable, ok := instance.(Initializable); ok {
		if err := initializable.Initialize(); err != nil {
			return nil, &ResolutionError{Type: d.ServiceType, Context: "initialize failed", Cause: err}
		}
	}

	if log := r.container.log; log.Enabled(zerolog.DebugLevel) {
		log.Debug("instance constructed", logger.Fields(
			logger.FieldService, d.ServiceType,
			logger.FieldLifetime, d.Lifetime,
			logger.FieldInstance, fmt.Sprintf("%T", instance),
		))
	}
	return instance, nil
}

func (r *resolution) invokeFactory(d *registry.Descriptor, factory FactoryFunc) (interface{}, error) {
	fr := &factoryResolver{res: r, base: r.chain.clone()}
	instance, err := factory(fr)
	fr.detached.Store(true)

	if err != nil {
		return nil, &ResolutionError{Type: d.ServiceType, Context: "factory failed", Cause: err}
	}
	if isNilValue(reflect.ValueOf(instance)) {
		return nil, &ResolutionError{Type: d.ServiceType, Context: "factory returned a nil instance"}
	}
	if !reflect.TypeOf(instance).AssignableTo(d.ServiceType) {
		return nil, &ResolutionError{
			Type:    d.ServiceType,
			Context: fmt.Sprintf("factory returned %T which is not assignable to %v", instance, d.ServiceType),
		}
	}
	return instance, nil
}

// invokeConstructors tries candidates from most to fewest parameters and uses
// the first one whose parameters all resolve.
func (r *resolution) invokeConstructors(d *registry.Descriptor) (interface{}, error) {
	ctors, _ := d.Constructors.([]*constructorInfo)

	var causes []error
	for _, ctor := range ctors {
		args, err := r.resolveParams(ctor)
		if err != nil {
			if !isUnresolvable(err) {
				return nil, err
			}
			causes = append(causes, err)
			continue
		}

		instance, err := ctor.call(args)
		if err != nil {
			return nil, &ResolutionError{Type: d.ServiceType, Context: "constructor failed", Cause: err}
		}
		return instance, nil
	}

	if d.Parameterless {
		instance := reflect.New(d.ImplementationType.Elem())
		if err := r.autowire(instance); err != nil {
			if !isUnresolvable(err) {
				return nil, err
			}
			causes = append(causes, err)
		} else {
			return instance.Interface(), nil
		}
	}

	return nil, &UnresolvableConstructorError{
		ServiceType:        d.ServiceType,
		ImplementationType: d.ImplementationType,
		Causes:             causes,
	}
}

func (r *resolution) resolveParams(ctor *constructorInfo) ([]reflect.Value, error) {
	args := make([]reflect.Value, ctor.numParams)
	for i, paramType := range ctor.paramTypes {
		value, err := r.resolveParam(paramType)
		if err != nil {
			return nil, errors.WithMessagef(err, "parameter %d (%v) of %v", i, paramType, ctor.fnType)
		}
		args[i] = value
	}
	return args, nil
}

// resolveParam supplies one constructor argument. Resolver, *Container and
// *Scope parameters receive the container infrastructure itself.
func (r *resolution) resolveParam(paramType reflect.Type) (reflect.Value, error) {
	switch paramType {
	case resolverType:
		return reflect.ValueOf(r.root()), nil
	case containerType:
		return reflect.ValueOf(r.container), nil
	case scopeType:
		if r.scope != nil {
			return reflect.ValueOf(r.scope), nil
		}
	}

	instance, err := r.resolve(paramType)
	if err != nil {
		return reflect.Value{}, err
	}
	if instance == nil {
		return reflect.Zero(paramType), nil
	}
	return reflect.ValueOf(instance), nil
}

// isUnresolvable reports whether err means a candidate's parameters cannot be
// satisfied, in which case the next candidate may still succeed.
func isUnresolvable(err error) bool {
	var cycle *CircularDependencyError
	if errors.As(err, &cycle) {
		return false
	}
	var notRegistered *ServiceNotRegisteredError
	if errors.As(err, &notRegistered) {
		return true
	}
	var unresolvable *UnresolvableConstructorError
	return errors.As(err, &unresolvable)
}

// request serves a Resolver call made on this chain.
func (r *resolution) request(service interface{}, required bool) (interface{}, error) {
	t, err := serviceTypeOf(service)
	if err != nil {
		return nil, err
	}
	instance, err := r.resolve(t)
	if err != nil {
		if !required && isNotRegistered(err, t) {
			return nil, nil
		}
		return nil, err
	}
	return instance, nil
}

func (r *resolution) GetService(service interface{}) (interface{}, error) {
	return r.request(service, false)
}

func (r *resolution) GetRequiredService(service interface{}) (interface{}, error) {
	return r.request(service, true)
}

func (r *resolution) IsRegistered(service interface{}) bool {
	return r.container.IsRegistered(service)
}

// factoryResolver is handed to factories. While the factory runs every call
// resolves on its own copy of the caller's chain, taken when the factory was
// entered, so ancestors are still detected as cycles and calls made from
// several goroutines never see each other. Once the factory returns it falls
// back to the scope or container so a retained reference stays usable.
type factoryResolver struct {
	res      *resolution
	base     *chain
	detached atomic.Bool
}

func (f *factoryResolver) current() Resolver {
	if f.detached.Load() {
		return f.res.root()
	}
	return &resolution{container: f.res.container, scope: f.res.scope, chain: f.base.clone()}
}

func (f *factoryResolver) GetService(service interface{}) (interface{}, error) {
	return f.current().GetService(service)
}

func (f *factoryResolver) GetRequiredService(service interface{}) (interface{}, error) {
	return f.current().GetRequiredService(service)
}

func (f *factoryResolver) IsRegistered(service interface{}) bool {
	return f.res.container.IsRegistered(service)
}

// isNotRegistered reports whether err says that t itself has no registration.
func isNotRegistered(err error, t reflect.Type) bool {
	var notRegistered *ServiceNotRegisteredError
	return errors.As(err, &notRegistered) && notRegistered.Type == t
}
