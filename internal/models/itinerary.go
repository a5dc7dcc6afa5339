package models

// DayPlan is one generated day of a trip.
type DayPlan struct {
	Day       int    `json:"day"`
	Date      string `json:"date"`
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// Itinerary is the response of the itinerary generator together with the
// preferences it was built from.
type Itinerary struct {
	Destination string     `json:"destination"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Budget      float64    `json:"budget"`
	GroupSize   int        `json:"group_size"`
	Activities  Activities `json:"activities"`
	Days        []DayPlan  `json:"itinerary"`
}
