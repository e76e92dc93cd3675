package sdk

import (
	"context"
	"iter"
	"sync"
	"time"
)

// StopToken asks a running inventory to end at the top of its next round.
// The zero value is ready to use.
type StopToken struct {
	mu   sync.Mutex
	done chan struct{}
}

func NewStopToken() *StopToken { return &StopToken{} }

// Done is closed once Stop has been called.
func (t *StopToken) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		t.done = make(chan struct{})
	}
	return t.done
}

func (t *StopToken) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		t.done = make(chan struct{})
	}
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

func (t *StopToken) Stopped() bool {
	select {
	case <-t.Done():
		return true
	default:
		return false
	}
}

type RunnerOptions struct {
	Protocol    Protocol
	Option      InventoryOption
	TagListSize int
	// Stop ends the run when triggered. Nil allocates a token that only
	// Conn.StopRunner can trigger.
	Stop *StopToken
}

// Runner drives repeated inventory rounds on one Conn. It is not safe for
// concurrent use; Data is valid until the next call to Next.
type Runner struct {
	conn *Conn
	opts RunnerOptions
	data *InventoryData

	rounds  uint32
	status  Status
	err     error
	stopped bool
	done    bool
}

// NewRunner validates opts and registers the runner's stop token with the
// connection. No command is sent until Next.
func (c *Conn) NewRunner(opts RunnerOptions) (*Runner, error) {
	const op = "NewRunner"
	if _, ok := inventoryCodes[opts.Protocol]; !ok {
		return nil, invalidArg(op, "Protocol", "%d unknown", opts.Protocol)
	}
	if err := opts.Option.validate(op); err != nil {
		return nil, err
	}
	if opts.TagListSize == 0 {
		opts.TagListSize = DefaultTagListSize
	}
	if opts.TagListSize < 0 || opts.TagListSize > MaxTagListSize {
		return nil, invalidArg(op, "TagListSize", "%d outside 1..%d", opts.TagListSize, MaxTagListSize)
	}
	if opts.Stop == nil {
		opts.Stop = NewStopToken()
	}

	c.mu.Lock()
	c.stop = opts.Stop
	c.mu.Unlock()

	return &Runner{conn: c, opts: opts, data: NewInventoryData(opts.TagListSize)}, nil
}

// StopRunner triggers the stop token of the most recently created runner.
func (c *Conn) StopRunner() {
	c.mu.RLock()
	token := c.stop
	c.mu.RUnlock()
	if token != nil {
		token.Stop()
	}
}

// Next runs one round. It returns false once the run has ended; Err, Status
// and Stopped then say why.
func (r *Runner) Next(ctx context.Context) bool {
	if r.done {
		return false
	}
	if !r.proceed(ctx) {
		return false
	}
	if r.rounds > 0 && r.opts.Option.InventoryDelay > 0 {
		if !r.wait(ctx, r.opts.Option.InventoryDelay) || !r.proceed(ctx) {
			return false
		}
	}

	st, err := r.conn.Inventory(ctx, r.opts.Protocol, r.opts.Option, r.data)
	r.status = st
	if err != nil {
		r.err = err
		r.done = true
		return false
	}
	r.rounds++
	if !st.Recoverable() {
		r.done = true
		return false
	}
	return true
}

func (r *Runner) proceed(ctx context.Context) bool {
	switch {
	case r.opts.Stop.Stopped():
		r.stopped = true
	case ctx.Err() != nil:
		r.err = ctx.Err()
	case r.opts.Option.RoundCount > 0 && r.rounds >= r.opts.Option.RoundCount:
	default:
		return true
	}
	r.done = true
	return false
}

func (r *Runner) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.opts.Stop.Done():
		r.stopped = true
	case <-ctx.Done():
		r.err = ctx.Err()
	}
	r.done = true
	return false
}

func (r *Runner) Data() *InventoryData { return r.data }
func (r *Runner) Rounds() uint32       { return r.rounds }
func (r *Runner) Status() Status       { return r.status }
func (r *Runner) Err() error           { return r.err }
func (r *Runner) Stopped() bool        { return r.stopped }

// All yields (round, data) pairs until the run ends.
func (r *Runner) All(ctx context.Context) iter.Seq2[uint32, *InventoryData] {
	return func(yield func(uint32, *InventoryData) bool) {
		for r.Next(ctx) {
			if !yield(r.rounds, r.data) {
				return
			}
		}
	}
}

// RunInventory runs rounds until stopped, cancelled, RoundCount is reached
// or a round fails. cycle is called inline after every round and finished
// exactly once at the end. Invalid options return before any callback.
func (c *Conn) RunInventory(ctx context.Context, opts RunnerOptions, cycle, finished func(*InventoryData)) (Status, error) {
	r, err := c.NewRunner(opts)
	if err != nil {
		return 0, err
	}
	for r.Next(ctx) {
		if cycle != nil {
			cycle(r.Data())
		}
	}
	if finished != nil {
		finished(r.Data())
	}
	c.log.WithField("rounds", r.Rounds()).WithField("stopped", r.Stopped()).Debug("RunInventory")
	return r.Status(), r.Err()
}
