package webcodecs

import (
	"fmt"
	"sync"
)

// EngineOutput is one unit of engine output: an encoded chunk (encoder
// handles) or a decoded frame (decoder handles). Payloads may reference
// engine-owned memory; the session copies them before they cross to the
// caller.
type EngineOutput struct {
	Chunk *EncodedChunk
	Frame *VideoFrame
}

// EngineHandle is one open codec instance. Handles are not thread-safe;
// the session confines all calls to its worker goroutine.
type EngineHandle interface {
	// Encode submits a raw frame and returns any chunks that became
	// available. An empty slice with a nil error means the engine is
	// buffering.
	Encode(frame *VideoFrame, forceKeyframe bool) ([]EngineOutput, error)

	// Decode submits an encoded chunk and returns any frames that
	// became available. Engines may reorder output presentation
	// timestamps internally.
	Decode(chunk *EncodedChunk) ([]EngineOutput, error)

	// Drain flushes the engine's internal buffering and returns all
	// remaining output. The handle stays usable for further work.
	Drain() ([]EngineOutput, error)

	// Close releases the codec instance. Idempotent.
	Close() error
}

// Engine creates codec instances for one codec family. Open is called
// on the session worker goroutine.
type Engine interface {
	// Name identifies the engine implementation, e.g. "libvpx".
	Name() string

	// Open creates a handle for the plan, or fails. A failed open must
	// leave no engine state behind.
	Open(plan *OpenPlan) (EngineHandle, error)
}

// --- Registry ---

type engineRegistry struct {
	mu      sync.RWMutex
	engines map[CodecID]Engine
}

var globalEngineRegistry = &engineRegistry{
	engines: make(map[CodecID]Engine),
}

// RegisterEngine registers the engine used for a codec family. The last
// registration wins; built-in engines register during init, so an
// application registration always overrides them.
func RegisterEngine(codec CodecID, engine Engine) {
	globalEngineRegistry.mu.Lock()
	defer globalEngineRegistry.mu.Unlock()
	globalEngineRegistry.engines[codec] = engine
}

// EngineFor returns the registered engine for a codec family.
func EngineFor(codec CodecID) (Engine, error) {
	globalEngineRegistry.mu.RLock()
	defer globalEngineRegistry.mu.RUnlock()

	engine, ok := globalEngineRegistry.engines[codec]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEngine, codec)
	}
	return engine, nil
}
