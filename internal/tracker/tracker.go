// Package tracker owns one live session: it serializes events through the
// engine and persists each settled state.
package tracker

import (
	"context"
	"degreetrack/internal/course"
	"degreetrack/internal/engine"
	"degreetrack/internal/logging"
	"degreetrack/internal/store"
	"degreetrack/internal/transcript"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultSessionKey is the store key of the session document.
const DefaultSessionKey = "session"

// Options configure a Tracker.
type Options struct {
	Major       string
	SessionKey  string
	SaveTimeout time.Duration
}

// Tracker is the single writer for a session.
type Tracker struct {
	mu     sync.Mutex
	engine *engine.Engine
	store  store.Store
	key    string
	state  *engine.State

	saveTimeout time.Duration
	saveMu      sync.Mutex
	saveWG      sync.WaitGroup
	seq         uint64
	savedSeq    uint64
}

// New restores the session from st, or starts a new one for opts.Major.
func New(ctx context.Context, eng *engine.Engine, st store.Store, opts Options) (*Tracker, error) {
	if opts.SessionKey == "" {
		opts.SessionKey = DefaultSessionKey
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	t := &Tracker{engine: eng, store: st, key: opts.SessionKey, saveTimeout: opts.SaveTimeout}

	state, err := t.restore(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		if state, err = eng.NewState(opts.Major); err != nil {
			return nil, err
		}
		logging.Session("Started new session %s for %s", state.ID, opts.Major)
	}
	t.state = state
	return t, nil
}

func (t *Tracker) restore(ctx context.Context) (*engine.State, error) {
	blob, err := t.store.Get(ctx, t.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var s engine.State
	if err := json.Unmarshal(blob, &s); err != nil {
		logging.SessionWarn("Discarding unreadable session %s: %v", t.key, err)
		return nil, nil
	}
	if _, err := t.engine.Registry().Major(s.Inputs.Major); err != nil {
		logging.SessionWarn("Discarding session with unknown major %q", s.Inputs.Major)
		return nil, nil
	}
	logging.Session("Restored session %s (%d records)", s.ID, len(s.Records))
	return t.engine.Normalize(&s), nil
}

// Engine returns the engine.
func (t *Tracker) Engine() *engine.Engine { return t.engine }

// State returns a copy of the current state.
func (t *Tracker) State() *engine.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Status evaluates the current state.
func (t *Tracker) Status() (engine.Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Status(t.state)
}

type operation func(*engine.State) (*engine.State, engine.Outcome, error)

// apply runs one event. The state only changes when op succeeds.
func (t *Tracker) apply(name string, op operation) (engine.Outcome, error) {
	timer := logging.StartTimer(logging.CategorySession, name)
	defer timer.StopWithThreshold(100 * time.Millisecond)

	t.mu.Lock()
	defer t.mu.Unlock()

	next, out, err := op(t.state)
	if err != nil {
		logging.SessionDebug("%s rejected: %v", name, err)
		return out, err
	}
	t.state = next
	t.saveLocked()
	return out, nil
}

// saveLocked schedules a write of the current state. Failures are logged
// and never reported to the caller. Stale writes are skipped.
func (t *Tracker) saveLocked() {
	blob, err := json.Marshal(t.state)
	if err != nil {
		logging.SessionError("Failed to encode session: %v", err)
		return
	}
	t.seq++
	seq := t.seq

	t.saveWG.Add(1)
	go func() {
		defer t.saveWG.Done()
		t.saveMu.Lock()
		defer t.saveMu.Unlock()
		if seq <= t.savedSeq {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), t.saveTimeout)
		defer cancel()
		if err := t.store.Put(ctx, t.key, blob); err != nil {
			logging.SessionError("Failed to save session: %v", err)
			return
		}
		t.savedSeq = seq
		logging.SessionDebug("Saved session (seq %d, %d bytes)", seq, len(blob))
	}()
}

// Flush waits for pending writes.
func (t *Tracker) Flush() {
	t.saveWG.Wait()
}

// Close flushes pending writes. The store is owned by the caller.
func (t *Tracker) Close() error {
	t.Flush()
	return nil
}

func (t *Tracker) AddCourse(input string, persist bool, units course.Amount) (engine.Outcome, error) {
	return t.apply("AddCourse", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.AddCourse(s, input, persist, units)
	})
}

func (t *Tracker) RemoveCourse(label string) (engine.Outcome, error) {
	return t.apply("RemoveCourse", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.RemoveCourse(s, label)
	})
}

// Import fetches rows from src, then applies them. The fetch happens
// outside the session lock.
func (t *Tracker) Import(ctx context.Context, src transcript.Source) (engine.Outcome, error) {
	rows, err := src.Fetch(ctx)
	if err != nil {
		return engine.Outcome{Message: err.Error()}, err
	}
	return t.ImportRows(rows)
}

// ImportRows applies already fetched transcript rows.
func (t *Tracker) ImportRows(rows []transcript.Row) (engine.Outcome, error) {
	return t.apply("Import", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.Import(s, rows)
	})
}

func (t *Tracker) ToggleExam(label string, checked bool) (engine.Outcome, error) {
	return t.apply("ToggleExam", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.ToggleExam(s, label, checked)
	})
}

func (t *Tracker) MoveGE(slotID, target string) (engine.Outcome, error) {
	return t.apply("MoveGE", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.MoveGE(s, slotID, target)
	})
}

func (t *Tracker) SetMajor(key string) (engine.Outcome, error) {
	return t.apply("SetMajor", func(s *engine.State) (*engine.State, engine.Outcome, error) {
		return t.engine.SetMajor(s, key)
	})
}

func (t *Tracker) Reset() (engine.Outcome, error) {
	return t.apply("Reset", t.engine.Reset)
}

func (t *Tracker) ResetInputs() (engine.Outcome, error) {
	return t.apply("ResetInputs", t.engine.ResetInputs)
}

func (t *Tracker) Undo() (engine.Outcome, error) {
	return t.apply("Undo", t.engine.Undo)
}
