// Package orchestrator wires the cache (C5), job queue (C6), fetcher
// (C3/C4) and analyzers (C7/C8) behind the single consumer-facing
// Analyze/JobStatus/Cancel surface described in spec.md §6.
package orchestrator

import (
	"github.com/google/uuid"

	"github.com/pullscope/pullscope/pkg/analysis"
	"github.com/pullscope/pullscope/pkg/queue"
)

// AnalyzerID enumerates the supported analyzer modes.
type AnalyzerID string

const (
	AnalyzerHits            AnalyzerID = "hits"
	AnalyzerGhosts          AnalyzerID = "ghosts"
	AnalyzerCombined        AnalyzerID = "combined"
	AnalyzerPhaseDamage     AnalyzerID = "phase_damage"
	AnalyzerAddDamage       AnalyzerID = "add_damage"
	AnalyzerDeaths          AnalyzerID = "deaths"
	AnalyzerPhase1Mechanics AnalyzerID = "phase1_mechanics"
)

// ReportRequest is the consumer-facing analysis request (spec.md §6).
type ReportRequest struct {
	ReportCodes []string
	AnalyzerID  AnalyzerID
	FightFilter string
	AbilityIDs  []int
	// Config carries the analyzer-specific parameters as a loosely typed
	// map; dispatch.go decodes it into the matching analysis.*Config.
	Config map[string]any
	// Fresh bypasses and invalidates the cache before fetching.
	Fresh bool
}

// Result is what Analyze returns on a cache hit or fast-path completion.
type Result struct {
	Analyzer AnalyzerID
	Output   *analysis.AnalyzerResult
}

// JobHandle is returned when a fetch is too slow to complete within the
// fast-return threshold; the caller polls JobStatus(ID).
type JobHandle struct {
	ID       uuid.UUID
	State    queue.JobState
	Position int
}
