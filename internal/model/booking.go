package model

// BookingRequest is the slot set filled by the booking dialog. It is both
// the shape accepted as a BookFlight event payload and the shape handed back
// to the caller on successful completion.
type BookingRequest struct {
	Destination   string `json:"destination"`
	Origin        string `json:"origin"`
	TravelDate    string `json:"travelDate"`
	MultipleDates bool   `json:"multipleDates"`
}
