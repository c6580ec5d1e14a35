package typeset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-sheets/internal/logger"
)

// DefaultTimeout bounds the wait for the external typesetter.
const DefaultTimeout = 8 * time.Second

type State string

const (
	StatePending  State = "pending"
	StateReady    State = "ready"
	StateDegraded State = "ready-degraded"
)

// Terminal reports whether export may proceed in this state.
func (s State) Terminal() bool { return s == StateReady || s == StateDegraded }

var (
	ErrNotStarted = errors.New("typeset: no run started")
	errEmptyHTML  = errors.New("typeset: typesetter returned no html")
)

// Outcome is the immutable result of one run. In the degraded state HTML is
// the raw, un-typeset source and Err holds the cause.
type Outcome struct {
	Token   uint64        `json:"token"`
	State   State         `json:"state"`
	HTML    string        `json:"-"`
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"elapsed"`
}

// Coordinator gates export behind a bounded typesetting pass. Every Run
// takes a new, strictly increasing token; a run whose token is no longer
// current when it finishes is discarded.
type Coordinator struct {
	ts      Typesetter
	timeout time.Duration
	log     *logger.Logger

	// exportMu is held shared by export callbacks and exclusively by Run, so
	// a reset never overlaps an export in progress.
	exportMu sync.RWMutex

	mu      sync.Mutex
	token   uint64
	state   State
	outcome Outcome
	done    chan struct{}
	cancel  context.CancelFunc
}

type Option func(*Coordinator)

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option { return func(c *Coordinator) { c.log = l } }

func NewCoordinator(ts Typesetter, opts ...Option) *Coordinator {
	if ts == nil {
		ts = Unavailable{}
	}
	c := &Coordinator{ts: ts, timeout: DefaultTimeout, state: StatePending}
	for _, o := range opts {
		o(c)
	}
	c.log = logger.OrNop(c.log)
	return c
}

// Run resets the coordinator to pending and typesets html. Any in-flight run
// is superseded: its context is cancelled and its result will be ignored.
func (c *Coordinator) Run(html string) uint64 {
	c.exportMu.Lock()
	defer c.exportMu.Unlock()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.state == StatePending && c.done != nil {
		// wake waiters of the superseded run so they pick up the new one
		close(c.done)
	}
	c.token++
	tok := c.token
	done := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	c.state = StatePending
	c.outcome = Outcome{Token: tok, State: StatePending}
	c.done = done
	c.cancel = cancel
	c.mu.Unlock()

	go c.await(ctx, cancel, tok, done, html)
	return tok
}

type result struct {
	html string
	err  error
}

func (c *Coordinator) await(ctx context.Context, cancel context.CancelFunc, tok uint64, done chan struct{}, html string) {
	defer cancel()
	start := time.Now()

	ch := make(chan result, 1)
	go func() {
		out, err := c.ts.Typeset(ctx, html)
		ch <- result{html: out, err: err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != c.token {
		c.log.Debug("typeset result discarded", "token", tok, "current", c.token)
		return
	}
	o := Outcome{Token: tok, Elapsed: time.Since(start)}
	switch {
	case res.err != nil:
		o.State, o.HTML, o.Err = StateDegraded, html, res.err
	case res.html == "":
		o.State, o.HTML, o.Err = StateDegraded, html, errEmptyHTML
	default:
		o.State, o.HTML = StateReady, res.html
	}
	if o.State == StateDegraded {
		c.log.Warn("typesetting degraded; raw math will be shown", "token", tok, "error", o.Err, "elapsed", o.Elapsed)
	}
	c.state = o.State
	c.outcome = o
	close(done)
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the token of the latest run, 0 before the first.
func (c *Coordinator) Token() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Outcome returns a snapshot of the latest run.
func (c *Coordinator) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Wait blocks until the latest run reaches a terminal state. A rerun started
// while waiting extends the wait to the new run.
func (c *Coordinator) Wait(ctx context.Context) (Outcome, error) {
	for {
		c.mu.Lock()
		if c.token == 0 {
			c.mu.Unlock()
			return Outcome{}, ErrNotStarted
		}
		if c.state.Terminal() {
			o := c.outcome
			c.mu.Unlock()
			return o, nil
		}
		done := c.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}
}

// Export runs fn with the terminal outcome of the latest run. fn never sees
// a pending document and never overlaps a rerun.
func (c *Coordinator) Export(ctx context.Context, fn func(Outcome) error) error {
	for {
		o, err := c.Wait(ctx)
		if err != nil {
			return err
		}
		c.exportMu.RLock()
		c.mu.Lock()
		current := c.token == o.Token && c.state.Terminal()
		c.mu.Unlock()
		if !current {
			c.exportMu.RUnlock()
			continue
		}
		err = fn(o)
		c.exportMu.RUnlock()
		return err
	}
}

// Close cancels any in-flight run.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}
