// Package nasc provides a reflection-based dependency injection container for Go.
//
// Nasc (Old Irish: "Link" or "Bond") maps abstract service types to the way
// their instances are produced, builds object graphs through constructor
// injection, and manages instance lifetimes.
//
// # Features
//
//   - Three lifetimes: Singleton, Transient and Scoped
//   - Constructor injection with fallback between constructor candidates
//   - Factories that resolve their own dependencies
//   - Field injection with `inject` struct tags
//   - Circular dependency detection with the full resolution path
//   - Scopes with reverse-order disposal of Disposable and io.Closer instances
//   - Startup validation of every registration
//   - Service providers for modular configuration
//   - Structured logging with zerolog and OpenTelemetry spans
//
// # Quick Start
//
//	container := nasc.New()
//	container.RegisterSingleton((*Logger)(nil), NewConsoleLogger)
//	container.RegisterTransient((*UserService)(nil), NewUserService)
//
//	users, err := nasc.Required[UserService](container)
//
// # Service Types
//
// A service is named by a type token. A nil pointer to an interface names the
// interface, so (*Logger)(nil) names Logger. nasc.Key[T]() names any type.
// Any other value names its own type, so (*Config)(nil) names *Config.
//
// # Implementations
//
// Constructor - parameters are resolved from the container:
//
//	container.RegisterSingleton((*Repository)(nil), NewSQLRepository)
//
// Several constructors - the one with the most resolvable parameters wins:
//
//	container.RegisterTransient((*Notifier)(nil),
//	    nasc.Implementation(&EmailNotifier{}, NewEmailNotifierWithSMTP, NewEmailNotifier))
//
// Factory - full control over construction:
//
//	container.RegisterScoped((*Tx)(nil), func(r nasc.Resolver) (interface{}, error) {
//	    db, err := nasc.Required[*sql.DB](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return db.Begin()
//	})
//
// Instance - pre-built and owned by the caller:
//
//	container.RegisterSingletonInstance((*Config)(nil), cfg)
//
// # Scopes
//
//	scope := container.CreateScope()
//	defer scope.Dispose()
//	uow, err := nasc.Required[UnitOfWork](scope)
//
// Scoped services resolved outside any scope are cached container-wide.
// Singletons resolve their dependencies outside of any scope, so a singleton
// never holds on to an instance owned by a scope.
//
// # Error Handling
//
// GetService returns nil for an unregistered service; GetRequiredService
// returns *ServiceNotRegisteredError. Construction failures surface as
// *CircularDependencyError, *UnresolvableConstructorError or *ResolutionError
// and can be matched with errors.As.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Each singleton or scoped
// instance is constructed at most once even under concurrent first requests.
package nasc
