package model

import "time"

// Event represents a scheduled activity at the cultural center: a
// screening, workshop, concert and so on. Capacity is the hard upper
// bound on non-cancelled reservations; available spots are always
// derived from the reservation count at read time and never stored.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – display title.
//	Description – long-form description.
//	Category    – one of the fixed categories below.
//	Date        – event day, formatted YYYY-MM-DD.
//	Time        – start time, formatted HH:MM.
//	Capacity    – maximum non-cancelled reservations (positive).
//	Location    – room or venue inside the center.
//	Price       – ticket price; zero for free events.
//	Published   – only published events accept reservations.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64    // events.id
	Title       string    // events.title
	Description string    // events.description
	Category    string    // events.category
	Date        string    // events.date (DATE column)
	Time        string    // events.time
	Capacity    int       // events.capacity
	Location    string    // events.location
	Price       float64   // events.price
	Published   bool      // events.published
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}

// Categories is the fixed set of event categories the center programs.
var Categories = []string{
	"Dominican Cinema",
	"Classic Cinema",
	"General Cinema",
	"Workshops",
	"Concerts",
	"Talks/Conferences",
	"Art Exhibitions",
	"3D Immersive Experiences",
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
