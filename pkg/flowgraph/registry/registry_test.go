package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[string, int]()
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Keys())
}

func TestRegisterAndGet(t *testing.T) {
	r := New[string, int]()

	r.Register("one", 1)
	r.Register("two", 2)

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestRegisterOverwrite(t *testing.T) {
	r := New[string, string]()
	r.Register("provider", "ollama")
	r.Register("provider", "mock")

	assert.Equal(t, "mock", r.MustGet("provider"))
	assert.Equal(t, 1, r.Len())
}

func TestMustGet(t *testing.T) {
	r := New[string, int]()
	r.Register("key", 42)
	assert.Equal(t, 42, r.MustGet("key"))

	assert.PanicsWithValue(t, "registry: key not found: missing", func() {
		r.MustGet("missing")
	})
}

func TestHas(t *testing.T) {
	r := New[string, int]()
	r.Register("exists", 1)

	assert.True(t, r.Has("exists"))
	assert.False(t, r.Has("nope"))
}

func TestKeys(t *testing.T) {
	r := New[string, int]()
	r.Register("ollama", 1)
	r.Register("claude-cli", 2)
	r.Register("mock", 3)

	assert.ElementsMatch(t, []string{"ollama", "claude-cli", "mock"}, r.Keys())
	assert.Equal(t, []string{"claude-cli", "mock", "ollama"}, SortedKeys(r))
}

func TestStructKeys(t *testing.T) {
	type key struct {
		provider string
		model    string
	}
	r := New[key, string]()
	r.Register(key{"ollama", "mistral"}, "local")

	v, ok := r.Get(key{"ollama", "mistral"})
	assert.True(t, ok)
	assert.Equal(t, "local", v)
	assert.False(t, r.Has(key{"ollama", "llama3"}))
}

func TestFactoryPattern(t *testing.T) {
	type greeter func(name string) string

	r := New[string, greeter]()
	r.Register("formal", func(name string) string { return "Good day, " + name })
	r.Register("casual", func(name string) string { return "hey " + name })

	assert.Equal(t, "hey bob", r.MustGet("casual")("bob"))
	assert.Equal(t, "Good day, Ann", r.MustGet("formal")("Ann"))
}

func TestConcurrentReadWrite(t *testing.T) {
	r := New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("k%d", i), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			r.Has(fmt.Sprintf("k%d", i))
			_ = r.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
	for i := 0; i < 50; i++ {
		assert.Equal(t, i, r.MustGet(fmt.Sprintf("k%d", i)))
	}
}
