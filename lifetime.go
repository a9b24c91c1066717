package nasc

// Lifetime represents the lifecycle strategy for a registered service.
type Lifetime string

const (
	// LifetimeSingleton creates a single instance that is reused for all resolutions.
	// The instance is created lazily on first resolution and lives until the container is closed.
	LifetimeSingleton Lifetime = "singleton"

	// LifetimeTransient creates a new instance on every resolution.
	LifetimeTransient Lifetime = "transient"

	// LifetimeScoped creates one instance per scope.
	// Resolved without a scope, a scoped service is cached container-wide like a singleton.
	LifetimeScoped Lifetime = "scoped"
)

// String returns the string representation of the lifetime.
func (l Lifetime) String() string {
	return string(l)
}

func (l Lifetime) valid() bool {
	switch l {
	case LifetimeSingleton, LifetimeTransient, LifetimeScoped:
		return true
	}
	return false
}

// FactoryFunc is a function that creates instances dynamically.
// It receives a Resolver bound to the ongoing resolution, so dependencies it
// resolves take part in cycle detection and see the same scope.
//
// Example:
//
//	factory := func(r nasc.Resolver) (interface{}, error) {
//	    cfg, err := nasc.Required[*Config](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewConnection(cfg.DSN), nil
//	}
//	container.RegisterSingleton((*Connection)(nil), factory)
type FactoryFunc func(Resolver) (interface{}, error)
