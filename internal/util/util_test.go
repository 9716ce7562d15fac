package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceContains(t *testing.T) {
	assert.True(t, SliceContains([]string{"data", "photos"}, "photos"))
	assert.False(t, SliceContains([]string{"data", "photos"}, "Photos"))
	assert.False(t, SliceContains(nil, "data"))
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, IsLocalhost("localhost:5432"))
	assert.True(t, IsLocalhost("127.0.0.1:5432"))
	assert.False(t, IsLocalhost("db.example.com:5432"))
}

func TestJSONStringify(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSONStringify(map[string]int{"a": 1}))
	assert.Equal(t, `null`, JSONStringify(nil))
}
