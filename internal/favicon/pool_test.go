package favicon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// gateFetcher blocks every fetch until release is closed and records the
// peak number of concurrent calls and the order calls started in.
type gateFetcher struct {
	release chan struct{}

	mu      sync.Mutex
	running int
	peak    int
	started []string
}

func (g *gateFetcher) Fetch(_ context.Context, pageURL string) Result {
	g.mu.Lock()
	g.running++
	if g.running > g.peak {
		g.peak = g.running
	}
	g.started = append(g.started, pageURL)
	g.mu.Unlock()

	<-g.release

	g.mu.Lock()
	g.running--
	g.mu.Unlock()

	data := "data:image/png;base64," + pageURL
	return Result{IconData: &data}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	fetcher := &gateFetcher{release: make(chan struct{})}
	pool := NewPool(PoolParams{Fetcher: fetcher, Concurrency: 2})

	var completed atomic.Int32
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		pool.Enqueue("id-"+u, u, func(string, Result) { completed.Add(1) })
	}

	// Only two may start while the gate is closed.
	deadline := time.Now().Add(2 * time.Second)
	for pool.Pending() != 5 || startedCount(fetcher) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 started and 5 pending, got %d started, %d pending", startedCount(fetcher), pool.Pending())
		}
		time.Sleep(time.Millisecond)
	}

	close(fetcher.release)
	pool.Wait()

	assert.Equal(t, completed.Load(), int32(5))
	assert.Equal(t, pool.Pending(), 0)
	assert.Check(t, fetcher.peak <= 2, "peak concurrency %d exceeds limit", fetcher.peak)
}

func startedCount(g *gateFetcher) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.started)
}

func TestPool_FIFO(t *testing.T) {
	fetcher := &gateFetcher{release: make(chan struct{})}
	close(fetcher.release)
	pool := NewPool(PoolParams{Fetcher: fetcher, Concurrency: 1})

	// With a limit of one, jobs start strictly in queue order.
	for _, u := range []string{"1", "2", "3", "4"} {
		pool.Enqueue(u, u, nil)
	}
	pool.Wait()

	assert.DeepEqual(t, fetcher.started, []string{"1", "2", "3", "4"})
}

func TestPool_DoneReceivesBookmarkID(t *testing.T) {
	fetcher := &gateFetcher{release: make(chan struct{})}
	close(fetcher.release)
	pool := NewPool(PoolParams{Fetcher: fetcher})

	var mu sync.Mutex
	got := map[string]string{}
	for _, id := range []string{"x", "y"} {
		pool.Enqueue(id, "https://"+id+".com", func(bookmarkID string, r Result) {
			mu.Lock()
			got[bookmarkID] = *r.IconData
			mu.Unlock()
		})
	}
	pool.Wait()

	assert.DeepEqual(t, got, map[string]string{
		"x": "data:image/png;base64,https://x.com",
		"y": "data:image/png;base64,https://y.com",
	})
}

func TestPool_QueueChangeListener(t *testing.T) {
	fetcher := &gateFetcher{release: make(chan struct{})}
	pool := NewPool(PoolParams{Fetcher: fetcher, Concurrency: 1})

	var mu sync.Mutex
	var counts []int
	pool.OnQueueChange(func(pending int) {
		mu.Lock()
		counts = append(counts, pending)
		mu.Unlock()
	})

	pool.Enqueue("a", "a", nil)
	pool.Enqueue("b", "b", nil)
	close(fetcher.release)
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Assert(t, len(counts) > 0)
	assert.Equal(t, counts[0], 1, "first enqueue reports one pending job")
	assert.Equal(t, counts[len(counts)-1], 0, "drained pool reports zero")
	for _, c := range counts {
		assert.Check(t, c >= 0 && c <= 2)
	}
}

func TestNewPool_DefaultConcurrency(t *testing.T) {
	pool := NewPool(PoolParams{Fetcher: &gateFetcher{}})
	assert.Equal(t, pool.limit, DefaultConcurrency)
}
