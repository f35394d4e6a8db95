package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New("Ada", "ada@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, [16]byte{}, [16]byte(c.ID))
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "ada@example.com", c.Email.String())
}

func TestNew_InvalidEmail(t *testing.T) {
	_, err := New("Ada", "not-an-email")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRestore(t *testing.T) {
	c, err := New("Ada", "ada@example.com")
	require.NoError(t, err)

	restored, err := Restore(c.ID, c.Name, c.Email.String())
	require.NoError(t, err)
	assert.Equal(t, c, restored)
}
