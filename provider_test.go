package nasc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggingProvider struct{}

func (p *loggingProvider) Register(c *Container) error {
	return c.RegisterSingleton((*Logger)(nil), NewConsoleLogger)
}

type databaseProvider struct {
	rec     *recorder
	bootErr error
}

func (p *databaseProvider) Register(c *Container) error {
	return c.RegisterSingleton((*Database)(nil), &MockDB{})
}

func (p *databaseProvider) Boot(r Resolver) error {
	p.rec.add("database")
	if p.bootErr != nil {
		return p.bootErr
	}
	db, err := Required[Database](r)
	if err != nil {
		return err
	}
	return db.Connect()
}

type cacheProvider struct {
	rec *recorder
}

func (p *cacheProvider) Register(c *Container) error {
	return c.RegisterSingleton((*Cache)(nil), func(l Logger) *memoryCache { return &memoryCache{log: l} })
}

func (p *cacheProvider) Boot(Resolver) error {
	p.rec.add("cache")
	return nil
}

type deferredProvider struct {
	enabled bool
}

func (p *deferredProvider) Register(c *Container) error {
	return c.RegisterTransient((*Notifier)(nil), &EmailNotifier{})
}

func (p *deferredProvider) ShouldRegister(*Container) bool {
	return p.enabled
}

type failingProvider struct{}

func (p *failingProvider) Register(*Container) error {
	return errors.New("missing credentials")
}

func TestRegisterProvider(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterProvider(&loggingProvider{}))

	assert.True(t, c.IsRegistered((*Logger)(nil)))
	assert.Len(t, c.Providers(), 1)
}

func TestRegisterProvider_Nil(t *testing.T) {
	assert.Error(t, New().RegisterProvider(nil))
}

func TestRegisterProvider_SameTypeOnce(t *testing.T) {
	c := New(WithStrictRegistration())
	require.NoError(t, c.RegisterProvider(&loggingProvider{}))
	require.NoError(t, c.RegisterProvider(&loggingProvider{}))

	assert.Len(t, c.Providers(), 1)
}

func TestRegisterProvider_Deferred(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterProvider(&deferredProvider{enabled: false}))
	assert.False(t, c.IsRegistered((*Notifier)(nil)))
	assert.Empty(t, c.Providers())

	require.NoError(t, c.RegisterProvider(&deferredProvider{enabled: true}))
	assert.True(t, c.IsRegistered((*Notifier)(nil)))
}

func TestRegisterProvider_Failure(t *testing.T) {
	c := New()
	err := c.RegisterProvider(&failingProvider{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
	assert.Empty(t, c.Providers())
}

func TestBootProviders_OrderAndOnce(t *testing.T) {
	rec := &recorder{}
	db := &databaseProvider{rec: rec}

	c := New()
	require.NoError(t, c.RegisterProvider(&loggingProvider{}))
	require.NoError(t, c.RegisterProvider(db))
	require.NoError(t, c.RegisterProvider(&cacheProvider{rec: rec}))

	require.NoError(t, c.BootProviders())
	require.NoError(t, c.BootProviders())

	assert.Equal(t, []string{"database", "cache"}, rec.list())

	resolved, err := Required[Database](c)
	require.NoError(t, err)
	assert.True(t, resolved.(*MockDB).connected)
}

func TestBootProviders_StopsAtFailure(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("unreachable")

	c := New()
	require.NoError(t, c.RegisterProvider(&databaseProvider{rec: rec, bootErr: boom}))
	require.NoError(t, c.RegisterProvider(&cacheProvider{rec: rec}))

	err := c.BootProviders()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"database"}, rec.list())
}

func TestBootProviders_ValidateOnBoot(t *testing.T) {
	rec := &recorder{}

	c := New(WithValidateOnBoot())
	require.NoError(t, c.RegisterProvider(&cacheProvider{rec: rec}))

	err := c.BootProviders()

	var validation *ValidationError
	require.True(t, errors.As(err, &validation), "got %v", err)
	assert.Len(t, validation.Errors, 1)

	require.NoError(t, c.RegisterProvider(&loggingProvider{}))
	assert.NoError(t, c.BootProviders())
}
