package favicon

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// DefaultConcurrency is the number of fetches allowed in flight.
const DefaultConcurrency = 6

// Result is the outcome of an icon fetch. Both fields are nil when no
// candidate produced an image.
type Result struct {
	IconData *string // data:image/... URI
	IconURI  *string // the source IconData was fetched from
}

// Fetcher resolves the favicon for a page URL. Implementations must
// always return; failure is a Result with nil fields, never a hang.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) Result
}

// QueueChangeFunc receives the number of queued plus running jobs.
type QueueChangeFunc func(pending int)

type job struct {
	bookmarkID string
	url        string
	done       func(bookmarkID string, r Result)
}

// Pool runs icon fetches with bounded concurrency. Jobs beyond the limit
// wait in FIFO order.
type Pool struct {
	fetcher Fetcher
	limit   int
	logger  *slog.Logger

	mu       sync.Mutex
	queue    []job
	active   int
	onChange QueueChangeFunc
	wg       sync.WaitGroup

	notifyMu sync.Mutex // serializes listener calls
}

// PoolParams holds parameters for creating a new Pool.
type PoolParams struct {
	Fetcher     Fetcher
	Concurrency int          // <= 0 uses DefaultConcurrency
	Logger      *slog.Logger // optional
}

// NewPool creates a Pool with the given parameters.
func NewPool(params PoolParams) *Pool {
	limit := params.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{
		fetcher: params.Fetcher,
		limit:   limit,
		logger:  logger,
	}
}

// OnQueueChange registers fn to be called whenever the pending count
// changes. It replaces any previous listener; nil removes it. fn must not
// call back into the pool.
func (p *Pool) OnQueueChange(fn QueueChangeFunc) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Pending returns the number of queued plus running jobs.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) + p.active
}

// Enqueue schedules a fetch for url. done is called exactly once, from a
// pool goroutine, with the bookmark ID it was queued for.
func (p *Pool) Enqueue(bookmarkID, url string, done func(bookmarkID string, r Result)) {
	p.wg.Add(1)

	p.mu.Lock()
	p.queue = append(p.queue, job{bookmarkID: bookmarkID, url: url, done: done})
	p.mu.Unlock()
	p.notify()

	p.process()
}

// Wait blocks until every enqueued job has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// process starts queued jobs up to the concurrency limit.
func (p *Pool) process() {
	for {
		p.mu.Lock()
		if p.active >= p.limit || len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		j := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()
		p.notify()

		go p.run(j)
	}
}

func (p *Pool) run(j job) {
	defer p.wg.Done()

	p.logger.Debug("fetching icon", "bookmark", j.bookmarkID, "url", j.url)
	r := p.fetcher.Fetch(context.Background(), j.url)
	if j.done != nil {
		j.done(j.bookmarkID, r)
	}

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	p.notify()

	p.process()
}

// notify reports the current pending count to the listener. Calls are
// serialized and each reads the count at call time, so the last report
// always matches the pool's state.
func (p *Pool) notify() {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	fn := p.onChange
	pending := len(p.queue) + p.active
	p.mu.Unlock()

	if fn != nil {
		fn(pending)
	}
}
