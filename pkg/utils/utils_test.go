package utils

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMax(t *testing.T) {
	assert.Equal(t, 5, Max(5, 3))
	assert.Equal(t, 5, Max(3, 5))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 3, Min(5, 3))
	assert.Equal(t, 3, Min(3, 5))
}

func TestSafeTruncate(t *testing.T) {
	assert.Equal(t, "hel", SafeTruncate("hello", 3))
	assert.Equal(t, "hi", SafeTruncate("hi", 5))
}

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

func TestCloseManyAggregatesErrors(t *testing.T) {
	boom := errors.New("boom")
	err := CloseMany([]io.Closer{failingCloser{nil}, failingCloser{boom}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCloseManyNoErrors(t *testing.T) {
	err := CloseMany([]io.Closer{failingCloser{nil}, failingCloser{nil}})
	assert.NoError(t, err)
}
