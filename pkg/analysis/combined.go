package analysis

import "github.com/pullscope/pullscope/pkg/core"

// CombinedConfig configures the Combined Fuck-ups analyzer (spec.md
// §4.6.3): the Hit Counter and Ghost Miss analyzers run over shared
// filters and their per-player rows are merged.
type CombinedConfig struct {
	HitAbilityID       int
	GhostAbilityID     int
	FirstHitOnly       bool
	IgnoreAfterDeaths  *int
	IgnoreFinalSeconds *float64
	GhostMode          GhostMode
	SetWindowMs        int64
	FightFilter        string
}

// Combined runs Hits and Ghosts and merges them into one per-player
// fuckup_rate = (hits + ghost_misses) / pull_count.
func Combined(snap *core.ReportSnapshot, cfg CombinedConfig) (*AnalyzerResult, error) {
	hitRes, err := Hits(snap, HitConfig{
		AbilityID:          cfg.HitAbilityID,
		FirstHitOnly:       cfg.FirstHitOnly,
		IgnoreAfterDeaths:  cfg.IgnoreAfterDeaths,
		IgnoreFinalSeconds: cfg.IgnoreFinalSeconds,
		FightFilter:        cfg.FightFilter,
	})
	if err != nil {
		return nil, err
	}
	ghostRes, err := Ghosts(snap, GhostConfig{
		AbilityID:   cfg.GhostAbilityID,
		Mode:        cfg.GhostMode,
		SetWindowMs: cfg.SetWindowMs,
		FightFilter: cfg.FightFilter,
	})
	if err != nil {
		return nil, err
	}

	pullCount := hitRes.PullCount
	merged := make(map[string]*PlayerRow)
	for _, r := range hitRes.Entries {
		row := r
		row.Metrics = map[string]float64{"hits": r.Total}
		merged[r.PlayerName] = &row
	}
	for _, r := range ghostRes.Entries {
		row, ok := merged[r.PlayerName]
		if !ok {
			row = &PlayerRow{PlayerName: r.PlayerName, Role: r.Role, Class: r.Class, Metrics: map[string]float64{}}
			merged[r.PlayerName] = row
		}
		row.Metrics["ghost_misses"] = r.Total
	}

	rows := make([]PlayerRow, 0, len(merged))
	for _, row := range merged {
		hits := row.Metrics["hits"]
		ghosts := row.Metrics["ghost_misses"]
		row.Metrics["fuckup_rate"] = core.PerPull(hits+ghosts, pullCount)
		rows = append(rows, *row)
	}
	sortRows(rows)
	classes, roles := roleClassMaps(rows)

	return &AnalyzerResult{
		Report:        hitRes.Report,
		PullCount:     pullCount,
		Entries:       rows,
		PlayerClasses: classes,
		PlayerRoles:   roles,
		FiltersEcho: map[string]any{
			"hit_ability_id":   cfg.HitAbilityID,
			"ghost_ability_id": cfg.GhostAbilityID,
			"fight_filter":     cfg.FightFilter,
		},
	}, nil
}
