package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_LIFO(t *testing.T) {
	c := NewCloser(0)

	var order []string
	for _, name := range []string{"postgres", "qdrant", "http"} {
		c.AddFunc(name, func() error {
			order = append(order, name)
			return nil
		})
	}
	require.Equal(t, 3, c.Len())

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "qdrant", "postgres"}, order)
}

func TestCloser_CollectsNamedErrors(t *testing.T) {
	c := NewCloser(0)
	c.AddFunc("redis", func() error { return errors.New("connection reset") })
	c.AddFunc("kafka", func() error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: connection reset")
	assert.NotContains(t, err.Error(), "kafka")
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0)

	calls := 0
	c.AddFunc("db", func() error {
		calls++
		return nil
	})

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcedAfterTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	var (
		mu     sync.Mutex
		forced []string
	)
	c.Add("first", func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		forced = append(forced, "first")
		return nil
	})

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	attempts := 0
	c.Add("slow", func(ctx context.Context) error {
		mu.Lock()
		attempts++
		first := attempts == 1
		mu.Unlock()

		if first {
			<-block
			return nil
		}
		return errors.New("still busy")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0/2 resources closed gracefully")
	assert.Contains(t, err.Error(), "[FORCED] slow: still busy")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first"}, forced)
}
