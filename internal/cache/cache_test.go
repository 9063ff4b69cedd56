package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []byte("v"))
	data, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, 1, c.Size())

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("k", []byte("v"))

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, Key("vignettes:1"), Key("vignettes:1"))
	assert.NotEqual(t, Key("vignettes:1"), Key("vignettes:2"))
}
