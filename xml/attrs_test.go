package xml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedAttrs_PreservesInsertionOrder(t *testing.T) {
	a := NewOrderedAttrs()
	a.Set("z", "1")
	a.Set("a", "2")
	a.Set("m", "3")
	require.Equal(t, []string{"z", "a", "m"}, a.Names())
	require.Equal(t, []string{"a", "m", "z"}, a.SortedNames())
	require.Equal(t, 3, a.Len())
}

func TestOrderedAttrs_OverwriteKeepsPosition(t *testing.T) {
	a := NewOrderedAttrs()
	a.Set("x", "1")
	a.Set("y", "2")
	a.Set("x", "updated")
	require.Equal(t, []string{"x", "y"}, a.Names())
	v, ok := a.Get("x")
	require.True(t, ok)
	require.Equal(t, "updated", v)
}

func TestOrderedAttrs_MissingKey(t *testing.T) {
	a := NewOrderedAttrs()
	_, ok := a.Get("absent")
	require.False(t, ok)
	require.False(t, a.Has("absent"))
}
