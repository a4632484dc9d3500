package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Fingerprint is the deterministic cache key for a logical analysis
// request: report code(s), fight filter, data types, ability ids, and the
// normalized analyzer parameter set (spec.md §3).
type Fingerprint string

// fingerprintPayload is marshaled to canonical JSON before hashing.
// encoding/json sorts map[string]any keys alphabetically, and the slices
// below are sorted explicitly, so two semantically-equal requests always
// produce byte-identical payloads regardless of call-site ordering.
type fingerprintPayload struct {
	ReportCodes []string       `json:"report_codes"`
	FightFilter string         `json:"fight_filter"`
	AnalyzerID  string         `json:"analyzer_id"`
	DataTypes   []string       `json:"data_types"`
	AbilityIDs  []int          `json:"ability_ids"`
	Params      map[string]any `json:"params"`
}

// BuildFingerprint computes the Fingerprint for a logical analysis request.
// Slices are copied and sorted internally; callers may pass them in any
// order.
func BuildFingerprint(reportCodes []string, fightFilter, analyzerID string, dataTypes []string, abilityIDs []int, params map[string]any) Fingerprint {
	payload := fingerprintPayload{
		ReportCodes: sortedCopy(reportCodes),
		FightFilter: fightFilter,
		AnalyzerID:  analyzerID,
		DataTypes:   sortedCopy(dataTypes),
		AbilityIDs:  sortedIntCopy(abilityIDs),
		Params:      params,
	}
	// json.Marshal cannot fail for this payload shape (no channels, funcs,
	// or cyclic structures reach here).
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func sortedIntCopy(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	return out
}
