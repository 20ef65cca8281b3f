// Package merger implements the dynamic fan-in primitive that multiplexes
// an arbitrary, growing set of producers into a single ordered consumer
// stream. Producers may be registered after the stream has already started
// draining; the stream only terminates once every registered producer has
// both finished and been observed as finished.
package merger

import (
	"context"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
)

// Producer yields items on a channel until it is exhausted, then closes it.
// A producer has no error channel: its completion is reported as
// StatusError only when ctx is cancelled while one of its items is waiting
// to enter the queue.
type Producer[T any] func(ctx context.Context) <-chan T

// CompletionStatus describes how a producer finished.
type CompletionStatus int

// Producer completion outcomes.
const (
	StatusOK CompletionStatus = iota
	StatusError
)

// OnComplete is invoked once per producer when it finishes. If unset, the
// Merger passes the GeneratorComplete through the SyntheticComplete
// converter into the stream when one is installed, and drops it otherwise.
type OnComplete func(id string, status CompletionStatus, err error)

// GeneratorComplete is the synthetic item emitted into the stream for a
// finished producer when no OnComplete callback is configured.
type GeneratorComplete struct {
	ID     string
	Status CompletionStatus
	Err    error
}

// Config configures a Merger.
type Config struct {
	// PollInterval bounds how long the consumer loop waits on an empty
	// queue before re-scanning for newly registered producers. Default 10ms
	// per SPEC_FULL.md Open Question decision D.2.
	PollInterval time.Duration
}

// SyntheticComplete converts a GeneratorComplete sentinel into a stream
// item of type T, used only when no OnComplete callback is installed. If
// nil, completions are silently dropped from the stream (the callback path
// should be preferred whenever T cannot represent a completion sentinel).
type SyntheticComplete[T any] func(GeneratorComplete) T

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Millisecond
	}
	return c
}

// item wraps a produced value or a completion/error sentinel.
type item[T any] struct {
	value      T
	hasValue   bool
	complete   *GeneratorComplete
	fatalErr   error
	producerID string
}

// Merger fans in any number of producers, registered dynamically, into one
// ordered channel of items. It is safe for concurrent Register calls while
// Stream is being consumed.
type Merger[T any] struct {
	cfg Config

	mu       sync.Mutex
	live     map[string]struct{}
	pending  map[string]Producer[T]
	started  map[string]struct{}
	finished map[string]struct{}

	queue chan item[T]

	onComplete OnComplete
	synthetic  SyntheticComplete[T]

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Merger. Buffer sizes the internal item queue; 0 uses a
// reasonable default.
func New[T any](cfg Config, buffer int) *Merger[T] {
	cfg = cfg.withDefaults()
	if buffer <= 0 {
		buffer = 64
	}
	return &Merger[T]{
		cfg:      cfg,
		live:     make(map[string]struct{}),
		pending:  make(map[string]Producer[T]),
		started:  make(map[string]struct{}),
		finished: make(map[string]struct{}),
		queue:    make(chan item[T], buffer),
		done:     make(chan struct{}),
	}
}

// SetOnComplete installs the per-producer completion callback. Must be
// called before Stream begins draining completions to take effect
// deterministically, though it is safe to set at any time.
func (m *Merger[T]) SetOnComplete(cb OnComplete) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = cb
}

// SetSyntheticComplete installs the GeneratorComplete → T converter used
// when no OnComplete callback is set.
func (m *Merger[T]) SetSyntheticComplete(fn SyntheticComplete[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synthetic = fn
}

// Register adds a producer. It fails silently (logs and ignores) if the id
// is already live, matching the spec's "fails if producer_id is already
// live" contract surfaced as a no-op rather than panicking a running
// orchestrator.
func (m *Merger[T]) Register(id string, p Producer[T]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, live := m.live[id]; live {
		log.Warnf("merger: producer %q already live, ignoring re-register", id)
		return false
	}
	if _, done := m.finished[id]; done {
		log.Warnf("merger: producer %q already finished, ignoring re-register", id)
		return false
	}
	m.live[id] = struct{}{}
	m.pending[id] = p
	return true
}

// Stream returns a channel of items. It starts an internal goroutine that
// launches workers for pending producers, pumps their output into the
// shared queue, and closes the returned channel once every registered
// producer has finished and that completion has been drained.
func (m *Merger[T]) Stream(ctx context.Context) <-chan T {
	out := make(chan T)
	go m.run(ctx, out)
	return out
}

func (m *Merger[T]) run(ctx context.Context, out chan<- T) {
	defer close(out)

	var wg sync.WaitGroup

	launchPending := func() {
		m.mu.Lock()
		toLaunch := make(map[string]Producer[T], len(m.pending))
		for id, p := range m.pending {
			if _, started := m.started[id]; started {
				continue
			}
			toLaunch[id] = p
			m.started[id] = struct{}{}
		}
		m.mu.Unlock()

		for id, p := range toLaunch {
			wg.Add(1)
			go m.runProducer(ctx, id, p, &wg)
		}
	}

	launchPending()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case it, ok := <-m.queue:
			if !ok {
				return
			}
			if it.hasValue {
				select {
				case out <- it.value:
				case <-ctx.Done():
					return
				}
				continue
			}
			if it.complete != nil {
				m.mu.Lock()
				m.finished[it.complete.ID] = struct{}{}
				allDone := m.allDoneLocked()
				m.mu.Unlock()
				m.mu.Lock()
				onComplete, synthetic := m.onComplete, m.synthetic
				m.mu.Unlock()
				switch {
				case onComplete != nil:
					onComplete(it.complete.ID, it.complete.Status, it.complete.Err)
				case synthetic != nil:
					select {
					case out <- synthetic(*it.complete):
					case <-ctx.Done():
						return
					}
				}
				launchPending()
				if allDone {
					m.mu.Lock()
					stillDone := m.allDoneLocked()
					m.mu.Unlock()
					if stillDone {
						return
					}
				}
			}
		case <-ticker.C:
			launchPending()
			m.mu.Lock()
			allDone := m.allDoneLocked()
			m.mu.Unlock()
			if allDone {
				return
			}
		}
	}
}

func (m *Merger[T]) allDoneLocked() bool {
	if len(m.live) == 0 {
		return false
	}
	for id := range m.live {
		if _, fin := m.finished[id]; !fin {
			return false
		}
	}
	return true
}

func (m *Merger[T]) runProducer(ctx context.Context, id string, p Producer[T], wg *sync.WaitGroup) {
	defer wg.Done()
	status := StatusOK
	var fatal error

	ch := p(ctx)
	for v := range ch {
		select {
		case m.queue <- item[T]{value: v, hasValue: true, producerID: id}:
		case <-ctx.Done():
			status = StatusError
			fatal = ctx.Err()
			goto finish
		}
	}

finish:
	select {
	case m.queue <- item[T]{complete: &GeneratorComplete{ID: id, Status: status, Err: fatal}}:
	case <-ctx.Done():
	}
}
