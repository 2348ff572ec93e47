package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.Equal(t, "HTTP/1.1", HTTP11.String())
	require.Equal(t, "HTTP/12.345", Version{Major: 12, Minor: 345}.String())
	require.True(t, HTTP11.AtLeast(1, 1))
	require.True(t, Version{Major: 2}.AtLeast(1, 1))
	require.False(t, HTTP10.AtLeast(1, 1))
}
