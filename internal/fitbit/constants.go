package fitbit

const (
	// Fitbit API URLs
	apiURLBase     = "https://api.fitbit.com"
	activitiesPath = "/1/user/-/activities/date/%s.json"
	sleepPath      = "/1.2/user/-/sleep/date/%s.json"

	// Today is resolved by Fitbit in the user's own timezone.
	Today = "today"
)
