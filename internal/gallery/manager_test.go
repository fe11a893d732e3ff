package gallery

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestManagerRejectsUnknownCategory(t *testing.T) {
	m := NewManager(newFakeStore(), zerolog.Nop(), Config{})

	_, err := m.Browser("swimming-pool")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestManagerReusesBrowserPerCategory(t *testing.T) {
	m := NewManager(newFakeStore(), zerolog.Nop(), Config{})

	library, err := m.Browser("library")
	require.NoError(t, err)
	again, err := m.Browser("library")
	require.NoError(t, err)
	require.Same(t, library, again)

	hostel, err := m.Browser("girls-hostel")
	require.NoError(t, err)
	require.NotSame(t, library, hostel)
	require.Equal(t, "gallery/girls-hostel", hostel.Prefix())
}
