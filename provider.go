package nasc

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/toutaio/toutago-nasc-container/logger"
)

// ServiceProvider groups the registrations of one subsystem.
//
//	type AudioProvider struct{}
//
//	func (p *AudioProvider) Register(c *nasc.Container) error {
//	    return c.RegisterSingleton((*AudioEngine)(nil), NewAudioEngine)
//	}
type ServiceProvider interface {
	Register(container *Container) error
}

// BootableProvider runs a boot step once every provider has registered, so
// Boot may resolve services registered by other providers.
//
//	func (p *MetadataProvider) Boot(r nasc.Resolver) error {
//	    client, err := nasc.Required[MetadataClient](r)
//	    if err != nil {
//	        return err
//	    }
//	    return client.Ping()
//	}
type BootableProvider interface {
	ServiceProvider
	Boot(resolver Resolver) error
}

// DeferredProvider registers only when ShouldRegister agrees, for example
// when a feature flag is on.
type DeferredProvider interface {
	ServiceProvider
	ShouldRegister(container *Container) bool
}

type providerEntry struct {
	provider ServiceProvider
	booted   bool
}

// RegisterProvider calls provider.Register right away and remembers the
// provider for BootProviders. A second provider of the same type is ignored,
// as is a DeferredProvider that declines.
func (c *Container) RegisterProvider(provider ServiceProvider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}
	providerType := reflect.TypeOf(provider)

	if deferred, ok := provider.(DeferredProvider); ok && !deferred.ShouldRegister(c) {
		c.log.Debug("provider skipped", logger.Fields(logger.FieldInstance, providerType.String()))
		return nil
	}

	c.providersMu.Lock()
	for _, entry := range c.providers {
		if reflect.TypeOf(entry.provider) == providerType {
			c.providersMu.Unlock()
			return nil
		}
	}
	c.providersMu.Unlock()

	if err := provider.Register(c); err != nil {
		return errors.Wrapf(err, "provider %v registration failed", providerType)
	}

	c.providersMu.Lock()
	c.providers = append(c.providers, &providerEntry{provider: provider})
	c.providersMu.Unlock()

	c.log.Debug("provider registered", logger.Fields(logger.FieldInstance, providerType.String()))
	return nil
}

// BootProviders calls Boot on every registered BootableProvider that has not
// booted yet, in registration order, and stops at the first failure.
// A container created WithValidateOnBoot then validates every registration.
func (c *Container) BootProviders() error {
	c.providersMu.Lock()
	pending := make([]*providerEntry, 0, len(c.providers))
	for _, entry := range c.providers {
		if !entry.booted {
			pending = append(pending, entry)
		}
	}
	c.providersMu.Unlock()

	for _, entry := range pending {
		bootable, ok := entry.provider.(BootableProvider)
		if !ok {
			continue
		}
		if err := bootable.Boot(c); err != nil {
			return errors.Wrapf(err, "provider %T boot failed", entry.provider)
		}
		c.providersMu.Lock()
		entry.booted = true
		c.providersMu.Unlock()
	}

	if c.validateOnBoot {
		return c.ValidateAll().Err()
	}
	return nil
}

// Providers returns the registered providers in registration order.
func (c *Container) Providers() []ServiceProvider {
	c.providersMu.Lock()
	defer c.providersMu.Unlock()

	providers := make([]ServiceProvider, len(c.providers))
	for i, entry := range c.providers {
		providers[i] = entry.provider
	}
	return providers
}
