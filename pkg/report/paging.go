package report

import (
	"context"
	"fmt"

	"github.com/pullscope/pullscope/pkg/core"
	"github.com/pullscope/pullscope/pkg/wowapi"
)

const maxStalledObservations = 3

// pageEvents follows nextPageTimestamp until it reaches endTime or goes
// nil, returning every raw event map encountered across all pages.
func pageEvents(ctx context.Context, client *wowapi.Client, reportCode, dataTypeEnum string, abilityID *int, startTime, endTime float64) ([]map[string]any, error) {
	query := wowapi.EventsPageQuery()
	variables := map[string]any{
		"code":      reportCode,
		"dataType":  dataTypeEnum,
		"startTime": startTime,
		"endTime":   endTime,
	}
	if abilityID != nil {
		query = wowapi.EventsPageByAbilityQuery()
		variables["abilityID"] = float64(*abilityID)
	}

	var events []map[string]any
	cursor := startTime
	var lastObserved *int64
	stalledCount := 0

	for {
		variables["startTime"] = cursor

		var resp eventsPageResponse
		if err := client.Execute(ctx, query, variables, &resp); err != nil {
			return nil, err
		}

		events = append(events, resp.ReportData.Report.Events.Data...)

		next := resp.ReportData.Report.Events.NextPageTimestamp
		if next == nil || float64(*next) >= endTime {
			return events, nil
		}

		if lastObserved != nil && *lastObserved == *next {
			stalledCount++
			if stalledCount >= maxStalledObservations {
				return nil, fmt.Errorf("%w: nextPageTimestamp repeated %d times at %d", core.ErrPaginationStalled, stalledCount, *next)
			}
		} else {
			stalledCount = 0
		}
		lastObserved = next
		cursor = float64(*next)
	}
}
