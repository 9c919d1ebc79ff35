package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", Coalesce("", "a", "b"))
	assert.Equal(t, 3, Coalesce(0, 0, 3))
	assert.Zero(t, Coalesce(0, 0))
	assert.Zero(t, Coalesce[string]())
}
