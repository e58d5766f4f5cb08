// Package robotevents is a client for the RobotEvents API v2, the public
// record of VEX competition results.
//
// The API serves Laravel-style paginated collections and enforces a strict
// request budget per token. The client threads every request through three
// layers:
//
//   - a process-wide pacing clock (one request per configured interval,
//     shared by all harvest workers)
//   - retry with exponential backoff, preferring the server's Retry-After
//   - an optional response cache so repeat runs skip the network entirely
//
// Collections are fetched page by page until the response metadata reports
// the last page:
//
//	client := robotevents.NewClient(&cfg.API, log)
//	seasons, err := client.Seasons(ctx, programID)
//	events, err := client.SeasonEvents(ctx, seasonID)
//	divisions, err := client.EventDivisions(ctx, eventID)
//	matches, err := client.DivisionMatches(ctx, eventID, divisionID, true)
//
// Errors carry the shared taxonomy from pkg/errors: 429 and 5xx responses
// are retried within the attempt budget, 401/403/404 and other 4xx are
// returned immediately.
package robotevents
