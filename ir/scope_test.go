package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeAddHas(t *testing.T) {
	s := NewScope()
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Len())

	s.Add("a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
	assert.Equal(t, 1, s.Len())
}

func TestScopeCloneIsIndependent(t *testing.T) {
	parent := NewScope()
	parent.Add("a")

	arm := parent.Clone()
	arm.Add("b")

	assert.True(t, arm.Has("a"))
	assert.True(t, arm.Has("b"))
	// Nothing added in the arm leaks back to the parent.
	assert.False(t, parent.Has("b"))
	assert.Equal(t, 1, parent.Len())
}
