package api

import "github.com/pullscope/pullscope/pkg/orchestrator"

// analyzeRequest is the JSON body for POST /v1/analyze.
type analyzeRequest struct {
	ReportCodes []string               `json:"report_codes" binding:"required"`
	AnalyzerID  string                 `json:"analyzer_id" binding:"required"`
	FightFilter string                 `json:"fight_filter"`
	AbilityIDs  []int                  `json:"ability_ids"`
	Config      map[string]any         `json:"config"`
	Fresh       bool                   `json:"fresh"`
}

func (r analyzeRequest) toOrchestratorRequest() orchestrator.ReportRequest {
	return orchestrator.ReportRequest{
		ReportCodes: r.ReportCodes,
		AnalyzerID:  orchestrator.AnalyzerID(r.AnalyzerID),
		FightFilter: r.FightFilter,
		AbilityIDs:  r.AbilityIDs,
		Config:      r.Config,
		Fresh:       r.Fresh,
	}
}
