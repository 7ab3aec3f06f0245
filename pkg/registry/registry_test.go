package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int
}

func TestPutGetDelete(t *testing.T) {
	s := New[counter]()

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.False(t, s.Exists("a"))

	s.Put("a", counter{N: 1})
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v.N)
	assert.True(t, s.Exists("a"))
	assert.Equal(t, 1, s.Len())

	s.Delete("a")
	assert.False(t, s.Exists("a"))
	assert.Equal(t, 0, s.Len())

	// Deleting again is a no-op.
	s.Delete("a")
}

func TestGetOrCreateOnce(t *testing.T) {
	s := New[counter]()
	calls := 0
	create := func() counter { calls++; return counter{N: 42} }

	v := s.GetOrCreate("k", create)
	assert.Equal(t, 42, v.N)
	v = s.GetOrCreate("k", create)
	assert.Equal(t, 42, v.N)
	assert.Equal(t, 1, calls)
}

func TestUpdateMissingKey(t *testing.T) {
	s := New[counter]()
	ok := s.Update("nope", func(c *counter) { c.N++ })
	assert.False(t, ok)
}

func TestUpdateIsAtomic(t *testing.T) {
	s := New[counter]()
	s.Put("k", counter{})

	const goroutines = 16
	const perGoroutine = 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				s.Update("k", func(c *counter) { c.N++ })
			}
		}()
	}
	wg.Wait()

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, goroutines*perGoroutine, v.N)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New[counter]()
	s.Put("k", counter{N: 1})
	v, _ := s.Get("k")
	v.N = 99
	again, _ := s.Get("k")
	assert.Equal(t, 1, again.N)
}
