package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_EmitAndSubscribe(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	ch := pr.Subscribe()
	want := ProgressEvent{
		Stage:   StageExtract,
		Section: "extract",
		Status:  ProgressWorking,
		Message: "reading",
	}

	pr.Emit(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestProgressReporter_EmitWhenFull_DoesNotBlock(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	done := make(chan struct{})
	go func() {
		for range 100 {
			pr.Emit(ProgressEvent{Stage: StageIndex, Section: "index", Status: ProgressWorking})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked when the channel was full")
	}
}

func TestProgressReporter_CloseTwiceAndEmitAfterClose(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()

	pr.Emit(ProgressEvent{Stage: StageReport, Section: "report", Status: ProgressComplete})
	pr.Close()
	pr.Close()
	pr.Emit(ProgressEvent{Stage: StageReport, Section: "report", Status: ProgressFailed})

	var received []ProgressEvent
	for ev := range ch {
		received = append(received, ev)
	}
	require.Len(t, received, 1)
	assert.Equal(t, ProgressComplete, received[0].Status)
}

func TestProgressReporter_NilIsNoop(t *testing.T) {
	var pr *ProgressReporter
	pr.Emit(ProgressEvent{Stage: StageIndex})
}

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "pending",
			event:  ProgressEvent{Section: "index", Status: ProgressPending},
			expect: "  ○ index (pending)",
		},
		{
			name:   "working",
			event:  ProgressEvent{Section: "index", Status: ProgressWorking},
			expect: "  ● index...",
		},
		{
			name:   "complete",
			event:  ProgressEvent{Section: "index", Status: ProgressComplete},
			expect: "  ✓ index complete",
		},
		{
			name:   "complete with message",
			event:  ProgressEvent{Section: "index", Status: ProgressComplete, Message: "12 files"},
			expect: "  ✓ index complete (12 files)",
		},
		{
			name:   "failed",
			event:  ProgressEvent{Section: "load", Status: ProgressFailed, Message: "graph file not found"},
			expect: "  ✗ load failed: graph file not found",
		},
		{
			name:   "unknown",
			event:  ProgressEvent{Section: "load", Status: "bogus"},
			expect: "  ? load (unknown status)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatProgress(tt.event))
		})
	}
}

func TestFormatStageHeader(t *testing.T) {
	assert.Equal(t, "[my-project] scan 1: extract", FormatStageHeader("my-project", StageExtract))
	assert.Equal(t, "[my-project] analyze 6: metrics", FormatStageHeader("my-project", StageMetrics))
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "index", StageIndex.String())
	assert.Equal(t, "report", StageReport.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.Equal(t, "unknown", Stage(-1).String())
}
