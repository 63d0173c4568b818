// Package orchestrator sequences the scan and analysis stages and writes
// their artifacts.
package orchestrator

import (
	"github.com/dusk-indust/filegraph/internal/analysis"
	"github.com/dusk-indust/filegraph/internal/graph"
)

// Stage identifies a pipeline stage.
type Stage int

const (
	StageIndex    Stage = 0
	StageExtract  Stage = 1
	StageAssemble Stage = 2
	StageReach    Stage = 3
	StageWrite    Stage = 4
	StageLoad     Stage = 5
	StageMetrics  Stage = 6
	StageReport   Stage = 7
)

func (s Stage) String() string {
	names := [...]string{
		"index",
		"extract",
		"assemble",
		"reach",
		"write",
		"load",
		"metrics",
		"report",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Phase is "scan" for the stages that build the graph file and "analyze"
// for those that consume it.
func (s Stage) Phase() string {
	if s <= StageWrite {
		return "scan"
	}
	return "analyze"
}

// ProgressEvent is emitted to the user during pipeline execution.
type ProgressEvent struct {
	Stage   Stage
	Section string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a stage.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ScanResult is the outcome of a scan.
type ScanResult struct {
	Graph        *graph.Graph
	Reachability *graph.Reachability
	GraphPath    string
	OrphansPath  string
}

// AnalyzeResult is the outcome of an analysis run.
type AnalyzeResult struct {
	Result       *analysis.Result
	AnalysisPath string
	ReportPath   string
}

// RunResult holds both halves of a full run.
type RunResult struct {
	Scan     *ScanResult
	Analysis *AnalyzeResult
}
