package nasc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lyingResolver returns whatever it was given, regardless of the requested type.
type lyingResolver struct {
	value interface{}
}

func (r lyingResolver) GetService(interface{}) (interface{}, error)         { return r.value, nil }
func (r lyingResolver) GetRequiredService(interface{}) (interface{}, error) { return r.value, nil }
func (r lyingResolver) IsRegistered(interface{}) bool                       { return true }

func TestGet(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterSingleton((*Logger)(nil), NewConsoleLogger))

	log, ok, err := Get[Logger](c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, &ConsoleLogger{}, log)

	db, ok, err := Get[Database](c)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, db)
}

func TestGet_PropagatesFailures(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterTransient((*Client)(nil), NewClient))

	_, ok, err := Get[*Client](c)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestRequired(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterSingleton((*Logger)(nil), NewConsoleLogger))

	log, err := Required[Logger](c)
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = Required[Database](c)
	var notRegistered *ServiceNotRegisteredError
	require.True(t, errors.As(err, &notRegistered))
	assert.Equal(t, Key[Database](), notRegistered.Type)
}

func TestRequired_TypeMismatch(t *testing.T) {
	_, err := Required[Logger](lyingResolver{value: &MockDB{}})

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, Key[Logger](), resErr.Type)
}

func TestMustResolve(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterSingleton((*Logger)(nil), NewConsoleLogger))

	assert.NotPanics(t, func() { MustResolve[Logger](c).Log("hello") })
	assert.Panics(t, func() { MustResolve[Database](c) })
}
