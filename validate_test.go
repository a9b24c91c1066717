package nasc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll_ReportsOnlyBrokenServices(t *testing.T) {
	log, buf := newJSONLogger("info")

	c := New(WithLogger(log))
	require.NoError(t, c.RegisterSingleton((*Logger)(nil), NewConsoleLogger))
	require.NoError(t, c.RegisterTransient((*Client)(nil), NewClient))
	require.NoError(t, c.RegisterScoped((*UnitOfWork)(nil), &dbUnitOfWork{}))

	report := c.ValidateAll()

	assert.Equal(t, 3, report.Checked)
	assert.False(t, report.OK())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, Key[*Client](), report.Failures[0].ServiceType)
	assert.Equal(t, LifetimeTransient, report.Failures[0].Lifetime)
	assert.True(t, report.Failed((*Client)(nil)))
	assert.False(t, report.Failed((*Logger)(nil)))

	var unresolvable *UnresolvableConstructorError
	assert.True(t, errors.As(report.Failures[0].Err, &unresolvable))

	var validation *ValidationError
	require.True(t, errors.As(report.Err(), &validation))
	assert.Len(t, validation.Errors, 1)

	assert.Contains(t, report.String(), "1 of 3 services failed validation")
	assert.Contains(t, buf.String(), "service failed validation")
	assert.Contains(t, buf.String(), "container validated")
}

func TestValidateAll_Healthy(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterSingleton((*Logger)(nil), NewConsoleLogger))
	require.NoError(t, c.RegisterSingleton((*Cache)(nil), func(l Logger) *memoryCache { return &memoryCache{log: l} }))
	require.NoError(t, c.RegisterTransient((*Client)(nil), NewClient))

	report := c.ValidateAll()

	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Equal(t, "3 services validated", report.String())
}

func TestValidateAll_ReportsCycles(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterTransient((*CycleA)(nil), NewCycleA))
	require.NoError(t, c.RegisterTransient((*CycleB)(nil), NewCycleB))

	report := c.ValidateAll()

	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		requireCycle(t, f.Err)
	}
}

func TestValidateAll_ScopedServicesUseThrowawayScope(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterScoped((*UnitOfWork)(nil), &dbUnitOfWork{}))

	require.True(t, c.ValidateAll().OK())

	_, cached := c.singletons.lookup(Key[UnitOfWork]())
	assert.False(t, cached, "validation must not leave scoped instances in the container cache")
}

func TestValidateAll_DisposesScopedInstances(t *testing.T) {
	rec := &recorder{}

	c := New()
	require.NoError(t, c.RegisterScoped((*PrimaryResource)(nil), func() *resource {
		return &resource{name: "scoped", rec: rec}
	}))

	require.True(t, c.ValidateAll().OK())
	assert.Equal(t, []string{"scoped"}, rec.list())
}

func TestValidateAll_ClosedContainer(t *testing.T) {
	c := New()
	require.NoError(t, c.Close())

	report := c.ValidateAll()

	require.False(t, report.OK())
	assert.ErrorIs(t, report.Err(), ErrContainerClosed)
}

func TestValidateAll_DisposesTransients(t *testing.T) {
	rec := &recorder{}
	log, buf := newJSONLogger("info")

	c := New(WithLogger(log))
	require.NoError(t, c.RegisterTransient((*PrimaryResource)(nil), func() *resource {
		return &resource{name: "primary", rec: rec}
	}))
	require.NoError(t, c.RegisterTransient((*SecondaryResource)(nil), func() *resource {
		return &resource{name: "secondary", rec: rec, err: errors.New("port still open")}
	}))

	require.True(t, c.ValidateAll().OK())

	assert.Equal(t, []string{"primary", "secondary"}, rec.list())
	assert.Contains(t, buf.String(), "cleanup failed")
	assert.Contains(t, buf.String(), "port still open")
}
