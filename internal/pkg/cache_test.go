package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOwnerCache(t *testing.T) {
	c := NewOwnerCache(time.Minute)
	cid, owner := NewID(), NewID()

	_, ok := c.Owner(cid)
	assert.False(t, ok)

	c.Remember(cid, owner)
	got, ok := c.Owner(cid)
	assert.True(t, ok)
	assert.Equal(t, owner, got)

	c.Forget(cid)
	_, ok = c.Owner(cid)
	assert.False(t, ok)
}

func TestOwnerCache_NilSafe(t *testing.T) {
	var c *OwnerCache
	c.Remember("a", "b")
	c.Forget("a")
	_, ok := c.Owner("a")
	assert.False(t, ok)
}

func TestRandDigits(t *testing.T) {
	code, err := RandDigits(6)
	assert.NoError(t, err)
	assert.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}
}
