package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer(" Juan ", "Dela Cruz", "juan@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Juan Dela Cruz", c.FullName())

	_, err = NewCustomer("", " ", "", "")
	assert.Error(t, err)
}
