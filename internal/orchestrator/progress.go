package orchestrator

import (
	"fmt"
	"sync"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch   chan ProgressEvent
	once sync.Once
	mu   sync.RWMutex
	done bool
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event without blocking. Events are dropped when the
// buffer is full or the reporter is closed.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	if pr == nil {
		return
	}
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	if pr.done {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. It is safe to call more than once.
func (pr *ProgressReporter) Close() {
	pr.once.Do(func() {
		pr.mu.Lock()
		pr.done = true
		close(pr.ch)
		pr.mu.Unlock()
	})
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Section)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Section)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s complete (%s)", event.Section, event.Message)
		}
		return fmt.Sprintf("  ✓ %s complete", event.Section)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Section, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Section)
	}
}

// FormatStageHeader formats a stage header for display.
// Returns: "[{name}] {phase} {N}: {stage}"
func FormatStageHeader(name string, stage Stage) string {
	return fmt.Sprintf("[%s] %s %d: %s", name, stage.Phase(), int(stage), stage.String())
}
