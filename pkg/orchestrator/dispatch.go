package orchestrator

import (
	"fmt"

	"github.com/pullscope/pullscope/pkg/analysis"
	"github.com/pullscope/pullscope/pkg/core"
)

// dataTypesFor returns the event data types a given analyzer needs, so the
// fetcher only pages what's required.
func dataTypesFor(id AnalyzerID) ([]string, error) {
	switch id {
	case AnalyzerHits, AnalyzerAddDamage:
		return []string{"damage-taken", "deaths"}, nil
	case AnalyzerCombined:
		return []string{"damage-taken", "deaths", "debuffs"}, nil
	case AnalyzerPhase1Mechanics:
		return []string{"damage-taken", "debuffs"}, nil
	case AnalyzerGhosts:
		return []string{"debuffs"}, nil
	case AnalyzerPhaseDamage:
		return []string{"damage-taken", "healing"}, nil
	case AnalyzerDeaths:
		return []string{"deaths", "debuffs", "casts"}, nil
	default:
		return nil, fmt.Errorf("%w: unknown analyzer %q", core.ErrBadRequest, id)
	}
}

// applyAnalyzer decodes req's config map and runs the matching pure
// analyzer over snap.
func applyAnalyzer(snap *core.ReportSnapshot, req ReportRequest) (*analysis.AnalyzerResult, error) {
	cfg := req.Config
	switch req.AnalyzerID {
	case AnalyzerHits:
		return analysis.Hits(snap, analysis.HitConfig{
			AbilityID:          firstAbilityID(req.AbilityIDs),
			FirstHitOnly:       getBool(cfg, "first_hit_only"),
			IgnoreAfterDeaths:  getIntPtr(cfg, "ignore_after_deaths"),
			IgnoreFinalSeconds: getFloatPtr(cfg, "ignore_final_seconds"),
			FightFilter:        req.FightFilter,
		})

	case AnalyzerGhosts:
		return analysis.Ghosts(snap, analysis.GhostConfig{
			AbilityID:   firstAbilityID(req.AbilityIDs),
			Mode:        analysis.GhostMode(getString(cfg, "mode")),
			SetWindowMs: int64(getFloat(cfg, "set_window_ms")),
			FightFilter: req.FightFilter,
		})

	case AnalyzerCombined:
		ability := req.AbilityIDs
		hitID, ghostID := 0, 0
		if len(ability) > 0 {
			hitID = ability[0]
		}
		if len(ability) > 1 {
			ghostID = ability[1]
		}
		return analysis.Combined(snap, analysis.CombinedConfig{
			HitAbilityID:       hitID,
			GhostAbilityID:     ghostID,
			FirstHitOnly:       getBool(cfg, "first_hit_only"),
			IgnoreAfterDeaths:  getIntPtr(cfg, "ignore_after_deaths"),
			IgnoreFinalSeconds: getFloatPtr(cfg, "ignore_final_seconds"),
			GhostMode:          analysis.GhostMode(getString(cfg, "mode")),
			SetWindowMs:        int64(getFloat(cfg, "set_window_ms")),
			FightFilter:        req.FightFilter,
		})

	case AnalyzerPhaseDamage:
		return analysis.PhaseDamage(snap, analysis.PhaseDamageConfig{
			PhaseProfile: getString(cfg, "phase_profile"),
			Phases:       getStringSlice(cfg, "phases"),
			FightFilter:  req.FightFilter,
		})

	case AnalyzerAddDamage:
		return analysis.AddDamage(snap, analysis.AddDamageConfig{
			AddName:           getString(cfg, "add_name"),
			IgnoreFirstAddSet: getBool(cfg, "ignore_first_add_set"),
			FightFilter:       req.FightFilter,
		})

	case AnalyzerDeaths:
		return analysis.Deaths(snap, analysis.DeathsConfig{
			OblivionFilter: analysis.OblivionFilter(getString(cfg, "oblivion_filter")),
			RecentWindowMs: int64(getFloat(cfg, "recent_window_ms")),
			FightFilter:    req.FightFilter,
		})

	case AnalyzerPhase1Mechanics:
		return analysis.Phase1Mechanics(snap, analysis.Phase1Config{
			ReverseGravityAbilityID: getInt(cfg, "reverse_gravity_ability_id"),
			ExcessMassAbilityID:     getInt(cfg, "excess_mass_ability_id"),
			AvoidableAbilityID:      getInt(cfg, "avoidable_ability_id"),
			EarlyMassWindowSeconds:  getFloat(cfg, "early_mass_window_seconds"),
			EnableOverlap:           getBool(cfg, "enable_overlap"),
			EnableEarlyMass:         getBool(cfg, "enable_early_mass"),
			EnableAvoidableHits:     getBool(cfg, "enable_avoidable_hits"),
			FightFilter:             req.FightFilter,
		})

	default:
		return nil, fmt.Errorf("%w: unknown analyzer %q", core.ErrBadRequest, req.AnalyzerID)
	}
}

func firstAbilityID(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func getInt(m map[string]any, key string) int {
	return int(getFloat(m, key))
}

func getIntPtr(m map[string]any, key string) *int {
	if _, ok := m[key]; !ok {
		return nil
	}
	v := getInt(m, key)
	return &v
}

func getFloatPtr(m map[string]any, key string) *float64 {
	if _, ok := m[key]; !ok {
		return nil
	}
	v := getFloat(m, key)
	return &v
}

func getStringSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
