package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_GetPut(t *testing.T) {
	l := newLRU[string, int](2)

	_, _, evicted := l.put("a", 1)
	assert.False(t, evicted)

	v, ok := l.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestLRU_EvictsOldestOnOverflow(t *testing.T) {
	l := newLRU[string, int](2)
	l.put("a", 1)
	l.put("b", 2)

	evictedKey, evictedValue, evicted := l.put("c", 3)
	assert.True(t, evicted)
	assert.Equal(t, "a", evictedKey)
	assert.Equal(t, 1, evictedValue)

	_, ok := l.get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, l.len())
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	l := newLRU[string, int](2)
	l.put("a", 1)
	l.put("b", 2)

	l.get("a") // a is now most-recently-used; b is next to evict

	evictedKey, _, evicted := l.put("c", 3)
	assert.True(t, evicted)
	assert.Equal(t, "b", evictedKey)
}

func TestLRU_PutExistingKeyUpdatesWithoutEviction(t *testing.T) {
	l := newLRU[string, int](2)
	l.put("a", 1)
	l.put("b", 2)

	_, _, evicted := l.put("a", 99)
	assert.False(t, evicted)
	assert.Equal(t, 2, l.len())

	v, ok := l.get("a")
	assert.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestLRU_Delete(t *testing.T) {
	l := newLRU[string, int](2)
	l.put("a", 1)
	l.delete("a")

	_, ok := l.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, l.len())
}
