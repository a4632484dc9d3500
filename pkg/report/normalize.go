package report

import "github.com/pullscope/pullscope/pkg/core"

var wireEventTypes = map[string]core.EventType{
	"damage":       core.EventTypeDamage,
	"heal":         core.EventTypeHeal,
	"cast":         core.EventTypeCast,
	"applybuff":    core.EventTypeApplyBuff,
	"applydebuff":  core.EventTypeApplyDebuff,
	"removebuff":   core.EventTypeRemoveBuff,
	"removedebuff": core.EventTypeRemoveDebuff,
	"death":        core.EventTypeDeath,
}

// parseRawEvent converts one free-form event map (spec.md §9's "dynamic
// event shape") into an Event header. Unrecognized types fall back to
// EventTypeOther and keep the whole raw map in Extra for diagnostics;
// Extra is nil for recognized types.
func parseRawEvent(reportCode string, raw map[string]any, sequence int) core.Event {
	wireType, _ := raw["type"].(string)
	evtType, known := wireEventTypes[wireType]
	if !known {
		evtType = core.EventTypeOther
	}

	evt := core.Event{
		ReportCode:  reportCode,
		Type:        evtType,
		TimestampMs: asInt64(raw["timestamp"]),
		SourceID:    asInt(raw["sourceID"]),
		TargetID:    asInt(raw["targetID"]),
		AbilityID:   asInt(raw["abilityGameID"]),
		AbilityName: asString(raw["abilityName"]),
		Amount:      asInt64(raw["amount"]),
		Mitigated:   asInt64(raw["mitigated"]),
		Overkill:    asInt64(raw["overkill"]),
		HitType:     asString(raw["hitType"]),
		Sequence:    sequence,
	}

	if evtType == core.EventTypeOther {
		evt.Extra = raw
	}
	return evt
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asInt64(v))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
