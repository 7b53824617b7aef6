package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// State describes the recognizer worker lifecycle
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrEngineTerminated is returned when recognition is requested after
// Terminate
var ErrEngineTerminated = errors.New("ocr engine is terminated")

// ProgressFunc receives recognition progress as a percentage with a status
// label
type ProgressFunc func(percent int, status string)

// Recognizer extracts text from an image. Implementations report progress
// through the callback when they can.
type Recognizer interface {
	Init(ctx context.Context) error
	Recognize(ctx context.Context, image []byte, onProgress ProgressFunc) (string, error)
	Close() error
}

// Engine owns a single recognizer worker. Initialization is lazy and
// happens at most once at a time; concurrent scans are serialized through
// the worker. A failed recognition tears the worker down so the next scan
// starts from a clean state.
type Engine struct {
	mu         sync.Mutex
	state      State
	recognizer Recognizer
}

// NewEngine creates an Engine around a recognizer
func NewEngine(recognizer Recognizer) *Engine {
	return &Engine{recognizer: recognizer}
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) ensureReady(ctx context.Context) error {
	switch e.state {
	case StateReady:
		return nil
	case StateTerminated:
		return ErrEngineTerminated
	}

	e.state = StateInitializing
	if err := e.recognizer.Init(ctx); err != nil {
		e.state = StateUninitialized
		return fmt.Errorf("ocr engine initialization failed: %w", err)
	}
	e.state = StateReady
	log.Info().Msg("OCR engine initialized")
	return nil
}

// Recognize runs OCR over an image and parses the text into a Result
func (e *Engine) Recognize(ctx context.Context, image []byte, onProgress ProgressFunc) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	text, err := e.recognizer.Recognize(ctx, image, onProgress)
	if err != nil {
		// A failed worker may be wedged; drop it and reinitialize lazily
		if closeErr := e.recognizer.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Error closing recognizer after failure")
		}
		e.state = StateUninitialized
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	result := ParseText(text)
	return &result, nil
}

// Terminate shuts the engine down permanently
func (e *Engine) Terminate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateTerminated {
		return nil
	}
	prev := e.state
	e.state = StateTerminated
	if prev == StateReady || prev == StateInitializing {
		return e.recognizer.Close()
	}
	return nil
}
