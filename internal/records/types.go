package records

import (
	"strconv"
	"time"
)

// Field is one labelled value shown in a record's detail pane.
type Field struct {
	Label string
	Value string
}

// Record is what the list UI needs from any resource record.
type Record interface {
	Key() string
	Title() string
	Subtitle() string
	Fields() []Field
	// Link is the secondary navigation target, empty when the record has none.
	Link() string
}

var (
	_ Record = User{}
	_ Record = Musician{}
)

// User mirrors one entry of the users endpoint.
type User struct {
	ID      int     `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Company Company `json:"company"`
}

// Company is the nested company object of a User.
type Company struct {
	Name string `json:"name"`
}

func (u User) Key() string      { return strconv.Itoa(u.ID) }
func (u User) Title() string    { return u.Name }
func (u User) Subtitle() string { return u.Email }
func (u User) Link() string     { return "" }

func (u User) Fields() []Field {
	return []Field{
		{Label: "ID", Value: strconv.Itoa(u.ID)},
		{Label: "Name", Value: u.Name},
		{Label: "Email", Value: u.Email},
		{Label: "Company", Value: u.Company.Name},
	}
}

// Musician mirrors one album entry of the most-played feed.
type Musician struct {
	ID            string `json:"id"`
	ArtistName    string `json:"artistName"`
	ReleaseDate   string `json:"releaseDate"`
	ArtistURL     string `json:"artistUrl"`
	ArtworkURL100 string `json:"artworkUrl100"`
}

const releaseDateLayout = "2006-01-02"

func (m Musician) Key() string      { return m.ID }
func (m Musician) Title() string    { return m.ArtistName }
func (m Musician) Subtitle() string { return m.ReleaseDate }
func (m Musician) Link() string     { return m.ArtistURL }

func (m Musician) Fields() []Field {
	return []Field{
		{Label: "ID", Value: m.ID},
		{Label: "Artist", Value: m.ArtistName},
		{Label: "Released", Value: m.ReleaseDate},
		{Label: "Artist URL", Value: m.ArtistURL},
		{Label: "Artwork", Value: m.ArtworkURL100},
	}
}

// ParsedReleaseDate returns the release date, or the zero time when it is not
// a YYYY-MM-DD date.
func (m Musician) ParsedReleaseDate() time.Time {
	t, err := time.Parse(releaseDateLayout, m.ReleaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Erase converts a typed slice into the Record view used by display code.
func Erase[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
