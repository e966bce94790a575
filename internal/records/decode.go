package records

import (
	"fmt"

	"github.com/listfeed/listfeed/internal/fetch"
)

const (
	UsersResource     = "users"
	MusiciansResource = "musicians"
)

// UsersEndpoint binds the users decoder to url.
func UsersEndpoint(url string) fetch.Endpoint[User] {
	return fetch.Endpoint[User]{Name: UsersResource, URL: url, Decode: DecodeUsers, Audit: DuplicateKeys[User]}
}

// MusiciansEndpoint binds the musicians decoder to url.
func MusiciansEndpoint(url string) fetch.Endpoint[Musician] {
	return fetch.Endpoint[Musician]{Name: MusiciansResource, URL: url, Decode: DecodeMusicians, Audit: DuplicateKeys[Musician]}
}

// Wire shapes use pointers so a missing key can be told apart from a zero
// value. Every field is required.

type userWire struct {
	ID      *int         `json:"id"`
	Email   *string      `json:"email"`
	Name    *string      `json:"name"`
	Company *companyWire `json:"company"`
}

type companyWire struct {
	Name *string `json:"name"`
}

type musicianWire struct {
	ID            *string `json:"id"`
	ArtistName    *string `json:"artistName"`
	ReleaseDate   *string `json:"releaseDate"`
	ArtistURL     *string `json:"artistUrl"`
	ArtworkURL100 *string `json:"artworkUrl100"`
}

type feedEnvelope struct {
	Feed *struct {
		Results *[]musicianWire `json:"results"`
	} `json:"feed"`
}

// MissingFieldError reports a required key absent from a record.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field %q", e.Index, e.Field)
}

// DecodeUsers parses a JSON array of users. Keys are converted from
// snake_case.
func DecodeUsers(body []byte) ([]User, error) {
	var wire []userWire
	if err := fetch.Unmarshal(body, &wire, fetch.KeysFromSnakeCase); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if wire == nil {
		return nil, fmt.Errorf("decode users: expected array, got null")
	}

	out := make([]User, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == nil:
			return nil, &MissingFieldError{Index: i, Field: "id"}
		case w.Email == nil:
			return nil, &MissingFieldError{Index: i, Field: "email"}
		case w.Name == nil:
			return nil, &MissingFieldError{Index: i, Field: "name"}
		case w.Company == nil:
			return nil, &MissingFieldError{Index: i, Field: "company"}
		case w.Company.Name == nil:
			return nil, &MissingFieldError{Index: i, Field: "company.name"}
		}
		out = append(out, User{
			ID:      *w.ID,
			Email:   *w.Email,
			Name:    *w.Name,
			Company: Company{Name: *w.Company.Name},
		})
	}
	return out, nil
}

// DecodeMusicians parses the {"feed":{"results":[...]}} envelope. Keys are
// used verbatim.
func DecodeMusicians(body []byte) ([]Musician, error) {
	var env feedEnvelope
	if err := fetch.Unmarshal(body, &env, fetch.KeysVerbatim); err != nil {
		return nil, fmt.Errorf("decode musicians: %w", err)
	}
	if env.Feed == nil {
		return nil, &MissingFieldError{Index: -1, Field: "feed"}
	}
	if env.Feed.Results == nil {
		return nil, &MissingFieldError{Index: -1, Field: "feed.results"}
	}

	wire := *env.Feed.Results
	out := make([]Musician, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == nil:
			return nil, &MissingFieldError{Index: i, Field: "id"}
		case w.ArtistName == nil:
			return nil, &MissingFieldError{Index: i, Field: "artistName"}
		case w.ReleaseDate == nil:
			return nil, &MissingFieldError{Index: i, Field: "releaseDate"}
		case w.ArtistURL == nil:
			return nil, &MissingFieldError{Index: i, Field: "artistUrl"}
		case w.ArtworkURL100 == nil:
			return nil, &MissingFieldError{Index: i, Field: "artworkUrl100"}
		}
		out = append(out, Musician{
			ID:            *w.ID,
			ArtistName:    *w.ArtistName,
			ReleaseDate:   *w.ReleaseDate,
			ArtistURL:     *w.ArtistURL,
			ArtworkURL100: *w.ArtworkURL100,
		})
	}
	return out, nil
}

// DuplicateKeys lists every id that appears more than once in items. Such
// payloads still load; the records are kept in server order.
func DuplicateKeys[T Record](items []T) []string {
	seen := make(map[string]int, len(items))
	var out []string
	for i, item := range items {
		if prev, ok := seen[item.Key()]; ok {
			out = append(out, fmt.Sprintf("duplicate record id %q at %d and %d", item.Key(), prev, i))
			continue
		}
		seen[item.Key()] = i
	}
	return out
}
