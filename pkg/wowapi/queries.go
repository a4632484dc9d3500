package wowapi

// GraphQL documents sent to the Warcraft Logs v2 API. Query shape follows
// the public reportData schema; variables are bound per-call by the
// fetcher in pkg/report.

const masterDataQuery = `
query ReportMasterData($code: String!) {
  reportData {
    report(code: $code) {
      title
      startTime
      endTime
      masterData {
        actors {
          id
          name
          type
          subType
          icon
          specs
        }
        abilities {
          gameID
          name
        }
      }
      fights {
        id
        name
        boss
        startTime
        endTime
        kill
        phaseTransitions {
          id
          startTime
        }
      }
    }
  }
}`

const eventsPageQuery = `
query ReportEvents($code: String!, $dataType: EventDataType!, $startTime: Float!, $endTime: Float!) {
  reportData {
    report(code: $code) {
      events(dataType: $dataType, startTime: $startTime, endTime: $endTime, limit: 10000) {
        data
        nextPageTimestamp
      }
    }
  }
}`

const eventsPageByAbilityQuery = `
query ReportEventsByAbility($code: String!, $dataType: EventDataType!, $startTime: Float!, $endTime: Float!, $abilityID: Float!) {
  reportData {
    report(code: $code) {
      events(dataType: $dataType, startTime: $startTime, endTime: $endTime, abilityID: $abilityID, limit: 10000) {
        data
        nextPageTimestamp
      }
    }
  }
}`

// graphQLDataTypes maps the orchestration engine's internal data type names
// to the API's EventDataType enum values.
var graphQLDataTypes = map[string]string{
	"damage-taken": "DamageTaken",
	"healing":      "Healing",
	"deaths":       "Deaths",
	"casts":        "Casts",
	"buffs":        "Buffs",
	"debuffs":      "Debuffs",
	"combined":     "Damage",
}

// DataTypeEnum translates an internal data type name to the API's
// EventDataType enum value.
func DataTypeEnum(dataType string) (string, bool) {
	v, ok := graphQLDataTypes[dataType]
	return v, ok
}

// MasterDataQuery returns the master-data + fights GraphQL document.
func MasterDataQuery() string { return masterDataQuery }

// EventsPageQuery returns the unfiltered events-page GraphQL document.
func EventsPageQuery() string { return eventsPageQuery }

// EventsPageByAbilityQuery returns the ability-filtered events-page
// GraphQL document.
func EventsPageByAbilityQuery() string { return eventsPageByAbilityQuery }
