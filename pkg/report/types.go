// Package report implements the paginated fetch-and-normalize pipeline
// (C3/C4) that turns one report code into a materialized core.ReportSnapshot.
package report

// FetchRequest describes one report's worth of data to pull.
type FetchRequest struct {
	ReportCode string
	// FightFilter, when non-empty, retains only fights whose name matches
	// case-insensitively. Empty retains every fight with a non-nil BossID.
	FightFilter string
	// DataTypes are the event data types to page, e.g. "damage-taken",
	// "healing", "deaths", "casts", "buffs", "debuffs". An unknown value
	// makes Fetch fail with core.ErrBadRequest.
	DataTypes []string
	// AbilityIDs optionally restricts event paging to one or two abilities.
	// Two ids trigger the combined-analyzer dual-query merge (spec step 4).
	AbilityIDs []int
	// MaxInflight bounds the number of concurrent page-fetch goroutines; 0
	// means the fetcher's configured default.
	MaxInflight int
}
