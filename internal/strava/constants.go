package strava

const (
	apiURLBase    = "https://www.strava.com/api/v3"
	activitiesURL = apiURLBase + "/athlete/activities"
)
