package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Capture session states.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Searcher runs a finished transcript through the search pipeline.
// *Pipeline satisfies it.
type Searcher interface {
	SearchTranscript(ctx context.Context, transcript string) (*Result, error)
}

// Capturer is the explicit state machine behind a voice capture session:
// Idle -> Start -> Listening -> Stop -> Processing -> Idle. Transcript
// chunks accumulate while listening; Cancel aborts from any state and
// cancels in-flight pipeline work.
type Capturer struct {
	searcher Searcher
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	chunks []string
	cancel context.CancelFunc
}

func NewCapturer(searcher Searcher, logger *slog.Logger) *Capturer {
	return &Capturer{searcher: searcher, logger: logger, state: StateIdle}
}

func (c *Capturer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a listening session. Starting while not idle is an error;
// callers must Stop or Cancel first.
func (c *Capturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return fmt.Errorf("voice: cannot start capture while %s", c.state)
	}
	c.state = StateListening
	c.chunks = c.chunks[:0]
	return nil
}

// AddTranscript appends an interim transcript chunk. Chunks arriving
// outside a listening session are dropped.
func (c *Capturer) AddTranscript(chunk string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateListening {
		return fmt.Errorf("voice: transcript chunk while %s", c.state)
	}
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		c.chunks = append(c.chunks, chunk)
	}
	return nil
}

// Stop ends the listening session. An empty transcript returns to idle with
// no result; otherwise the accumulated transcript runs through the pipeline
// and the session returns to idle when it finishes. The session context is
// cancellable via Cancel.
func (c *Capturer) Stop(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.state != StateListening {
		c.mu.Unlock()
		return nil, fmt.Errorf("voice: cannot stop capture while %s", c.state)
	}

	transcript := strings.Join(c.chunks, " ")
	c.chunks = c.chunks[:0]
	if strings.TrimSpace(transcript) == "" {
		c.state = StateIdle
		c.mu.Unlock()
		return nil, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.state = StateProcessing
	c.cancel = cancel
	c.mu.Unlock()

	res, err := c.searcher.SearchTranscript(runCtx, transcript)

	c.mu.Lock()
	c.state = StateIdle
	c.cancel = nil
	c.mu.Unlock()
	cancel()

	if err != nil {
		c.logger.Error("voice capture failed", "error", err)
		return nil, err
	}
	return res, nil
}

// Cancel aborts the session: it discards accumulated transcript while
// listening and cancels in-flight pipeline work while processing.
func (c *Capturer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateListening:
		c.chunks = c.chunks[:0]
		c.state = StateIdle
	case StateProcessing:
		if c.cancel != nil {
			c.cancel()
		}
	}
}
