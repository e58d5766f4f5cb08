package robotevents

import "fmt"

const (
	// BaseURL is the base URL for the RobotEvents API
	BaseURL = "https://www.robotevents.com/api/v2"

	// DefaultPerPage is the page size requested when none is configured
	DefaultPerPage = 250

	// MaxPerPage is the largest page size the API accepts
	MaxPerPage = 250
)

// Endpoint labels used for metrics and logging.
const (
	endpointSeasons   = "seasons"
	endpointEvents    = "events"
	endpointDivisions = "divisions"
	endpointMatches   = "matches"
)

// SeasonsPath lists all seasons.
func SeasonsPath() string {
	return "/seasons"
}

// SeasonEventsPath lists the events of a season.
func SeasonEventsPath(seasonID int) string {
	return fmt.Sprintf("/seasons/%d/events", seasonID)
}

// EventDivisionsPath lists the divisions of an event.
func EventDivisionsPath(eventID int) string {
	return fmt.Sprintf("/events/%d/divisions", eventID)
}

// DivisionMatchesPath lists the matches of a division.
func DivisionMatchesPath(eventID, divisionID int) string {
	return fmt.Sprintf("/events/%d/divisions/%d/matches", eventID, divisionID)
}
