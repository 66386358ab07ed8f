package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, "BillCreated", "BillVoided")

		assert.Equal(t, []string{"BillCreated", "BillVoided"}, registry.EventTypes())
		assert.Len(t, registry.GetHandlers("BillCreated"), 1)
		assert.Len(t, registry.GetHandlers("BillVoided"), 1)
		assert.Empty(t, registry.GetHandlers("PaymentRecorded"))
	})

	t.Run("wildcard", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler)

		assert.Empty(t, registry.EventTypes())
		assert.Len(t, registry.GetHandlers("Anything"), 1)
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, "BillCreated")
		registry.Register(handler, "BillCreated")
		registry.Register(handler)
		registry.Register(handler)

		assert.Len(t, registry.GetHandlers("BillCreated"), 2)
		assert.Len(t, registry.GetHandlers("BillVoided"), 1)
	})
}

func TestHandlerRegistry_GetHandlersOrdersTypedBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newTestHandler()
	typed := newTestHandler()
	registry.Register(wildcard)
	registry.Register(typed, "BillCreated")

	handlers := registry.GetHandlers("BillCreated")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newTestHandler()
	second := newTestHandler()
	registry.Register(first, "BillCreated", "BillVoided")
	registry.Register(second, "BillCreated")
	registry.Register(first)

	registry.Unregister(first)

	assert.Equal(t, []string{"BillCreated"}, registry.EventTypes())
	handlers := registry.GetHandlers("BillCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, second, handlers[0])
	assert.Empty(t, registry.GetHandlers("BillVoided"))
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(newTestHandler(), "BillCreated")

	handlers := registry.GetHandlers("BillCreated")
	handlers[0] = nil

	assert.NotNil(t, registry.GetHandlers("BillCreated")[0])
}
