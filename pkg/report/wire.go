package report

// Wire response shapes for the two GraphQL documents the fetcher issues.
// Field names mirror the upstream schema (spec.md §6); unrecognized fields
// are simply absent from these structs and ignored by json.Unmarshal.

type masterDataResponse struct {
	ReportData struct {
		Report *struct {
			Title      string  `json:"title"`
			StartTime  float64 `json:"startTime"`
			EndTime    float64 `json:"endTime"`
			MasterData struct {
				Actors []wireActor `json:"actors"`
			} `json:"masterData"`
			Fights []wireFight `json:"fights"`
		} `json:"report"`
	} `json:"reportData"`
}

type wireActor struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	SubType string   `json:"subType"`
	Specs   []string `json:"specs"`
}

type wireFight struct {
	ID               int                    `json:"id"`
	Name             string                 `json:"name"`
	Boss             *int                   `json:"boss"`
	StartTime        int64                  `json:"startTime"`
	EndTime          int64                  `json:"endTime"`
	Kill             bool                   `json:"kill"`
	PhaseTransitions []wirePhaseTransition  `json:"phaseTransitions"`
}

type wirePhaseTransition struct {
	ID        int   `json:"id"`
	StartTime int64 `json:"startTime"`
}

type eventsPageResponse struct {
	ReportData struct {
		Report struct {
			Events struct {
				Data              []map[string]any `json:"data"`
				NextPageTimestamp *int64           `json:"nextPageTimestamp"`
			} `json:"events"`
		} `json:"report"`
	} `json:"reportData"`
}
