package iohelper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCapped_NilReader(t *testing.T) {
	data, err := ReadCapped(nil, DefaultMaxOutputSize)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NotNil(t, data)
}

func TestReadCapped_UnderLimit(t *testing.T) {
	data, err := ReadCapped(strings.NewReader("error: aborting\n"), DefaultMaxOutputSize)
	require.NoError(t, err)
	assert.Equal(t, "error: aborting\n", string(data))
}

func TestReadCapped_TruncatesAtLimit(t *testing.T) {
	data, err := ReadCapped(strings.NewReader(strings.Repeat("x", 100)), 10)
	require.NoError(t, err)
	assert.Len(t, data, 10)
	assert.True(t, Truncated(data, 10))
}

func TestTruncated_UnderLimit(t *testing.T) {
	assert.False(t, Truncated([]byte("short"), 100))
}
