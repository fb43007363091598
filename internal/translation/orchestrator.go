package translation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/store"
)

// State is the orchestrator's run state.
type State int

// Orchestrator states. Completed and Failed auto-return to Idle after the
// cooldown, during which the busy flag stays set.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// DefaultCooldown is how long a terminal state (and its status message)
// remains visible before the orchestrator returns to Idle.
const DefaultCooldown = 2 * time.Second

// ProgressEvent is one progress update during a translation run.
type ProgressEvent struct {
	State    string        `json:"state"`
	Section  cv.SectionKey `json:"section,omitempty"`
	Index    int           `json:"index,omitempty"`
	Total    int           `json:"total,omitempty"`
	Message  string        `json:"message"`
	Document *cv.CVData    `json:"document,omitempty"`
}

// ProgressFunc is called for each progress update. Calls arrive in section
// order from the goroutine driving the run.
type ProgressFunc func(event ProgressEvent)

// Orchestrator drives a full-document translation, one section at a time,
// always from the immutable source snapshot, publishing partial results to
// the store as they arrive and reverting the display on any failure.
type Orchestrator struct {
	store      *store.Store
	translator SectionTranslator
	cooldown   time.Duration

	mu    sync.Mutex
	state State
	busy  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCooldown overrides the terminal-state cooldown. Mostly for tests.
func WithCooldown(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.cooldown = d
	}
}

// NewOrchestrator creates an orchestrator bound to a store and a translator.
func NewOrchestrator(st *store.Store, tr SectionTranslator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      st,
		translator: tr,
		cooldown:   DefaultCooldown,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether an exclusive operation (translation run, including its
// cooldown, or an upload holding the flag) is in progress.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// BeginExclusive claims the shared busy flag for a non-translation exclusive
// operation (upload). Returns ErrBusy if anything else holds it. Callers must
// release with EndExclusive.
func (o *Orchestrator) BeginExclusive() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrBusy
	}
	o.busy = true
	return nil
}

// EndExclusive releases the busy flag claimed with BeginExclusive.
func (o *Orchestrator) EndExclusive() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
}

// Run translates the whole document into targetLang, section by section, and
// returns once the run reaches a terminal state. On any section failure the
// display document is reverted to the source snapshot and a *SectionError is
// returned; the source snapshot itself is never modified.
//
// If the source snapshot is already in targetLang, the display is reset to
// the source data and the run is a no-op with zero translator calls.
func (o *Orchestrator) Run(ctx context.Context, targetLang string, onProgress ProgressFunc) error {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return ErrBusy
	}

	src := o.store.Source()
	if src.Lang == targetLang {
		// No-op fast path: the source already matches.
		o.store.SetDisplayOnly(src.Data)
		o.mu.Unlock()
		return nil
	}

	o.busy = true
	o.state = StateRunning
	o.mu.Unlock()

	err := o.translateAll(ctx, src, targetLang, onProgress)

	o.mu.Lock()
	if err != nil {
		o.state = StateFailed
	} else {
		o.state = StateCompleted
	}
	o.mu.Unlock()

	if err != nil {
		emit(onProgress, ProgressEvent{
			State:   StateFailed.String(),
			Message: "Translation failed",
		})
	} else {
		emit(onProgress, ProgressEvent{
			State:   StateCompleted.String(),
			Message: "Translation complete!",
		})
	}

	// The busy flag clears only after the cooldown, so the UI cannot start
	// an overlapping run while the status message is still visible.
	time.AfterFunc(o.cooldown, func() {
		o.mu.Lock()
		o.state = StateIdle
		o.busy = false
		o.mu.Unlock()
	})

	return err
}

// translateAll runs the sequential section loop over the snapshot captured at
// entry. Each section is translated from the source, never from the
// in-progress display content.
func (o *Orchestrator) translateAll(ctx context.Context, src store.Snapshot, targetLang string, onProgress ProgressFunc) error {
	working := src.Data.Clone()
	total := len(cv.SectionKeys)

	for i, key := range cv.SectionKeys {
		content, _ := src.Data.Section(key)
		if cv.EmptySection(content) {
			continue
		}

		emit(onProgress, ProgressEvent{
			State:   StateRunning.String(),
			Section: key,
			Index:   i + 1,
			Total:   total,
			Message: fmt.Sprintf("Translating %s...", key),
		})

		raw, err := o.translator.TranslateSection(ctx, key, content, targetLang)
		if err != nil {
			o.store.RevertDisplayToSource()
			return &SectionError{Section: key, Err: err}
		}

		merged, err := cv.ApplySection(working, key, raw)
		if err != nil {
			o.store.RevertDisplayToSource()
			return &SectionError{Section: key, Err: err}
		}

		// Re-sanitize the whole working copy before trusting it; a
		// translator response decodes tolerantly and may carry nil slices.
		working = merged.Sanitized()
		o.store.SetDisplayOnly(working)

		snapshot := working.Clone()
		emit(onProgress, ProgressEvent{
			State:    StateRunning.String(),
			Section:  key,
			Index:    i + 1,
			Total:    total,
			Message:  fmt.Sprintf("Translated %s", key),
			Document: &snapshot,
		})
	}

	return nil
}

func emit(onProgress ProgressFunc, event ProgressEvent) {
	if onProgress != nil {
		onProgress(event)
	}
}
