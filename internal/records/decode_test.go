package records

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeUsers(t *testing.T) {
	body := []byte(`[
		{"id":1,"email":"a@x.com","name":"A","company":{"name":"C","catch_phrase":"x"},"user_name":"ignored"},
		{"id":2,"email":"","name":"B","company":{"name":""}}
	]`)
	got, err := DecodeUsers(body)
	if err != nil {
		t.Fatalf("DecodeUsers returned error: %v", err)
	}
	want := []User{
		{ID: 1, Email: "a@x.com", Name: "A", Company: Company{Name: "C"}},
		{ID: 2, Email: "", Name: "B", Company: Company{Name: ""}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeUsers mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUsers_EmptyArray(t *testing.T) {
	got, err := DecodeUsers([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeUsers returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestDecodeUsers_Failures(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		missing string
	}{
		{"object instead of array", `{"not":"expected"}`, ""},
		{"null", `null`, ""},
		{"id wrong type", `[{"id":"1","email":"e","name":"n","company":{"name":"c"}}]`, ""},
		{"missing id", `[{"email":"e","name":"n","company":{"name":"c"}}]`, "id"},
		{"missing email", `[{"id":1,"name":"n","company":{"name":"c"}}]`, "email"},
		{"missing company", `[{"id":1,"email":"e","name":"n"}]`, "company"},
		{"missing company name", `[{"id":1,"email":"e","name":"n","company":{}}]`, "company.name"},
		{"null element", `[null]`, "id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeUsers([]byte(tc.body))
			if err == nil {
				t.Fatalf("DecodeUsers(%s) returned nil error", tc.body)
			}
			if tc.missing == "" {
				return
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) || mf.Field != tc.missing {
				t.Fatalf("error = %v, want missing field %q", err, tc.missing)
			}
		})
	}
}

func TestDecodeUsers_DuplicateIDsStillLoad(t *testing.T) {
	body := `[{"id":1,"email":"e","name":"n","company":{"name":"c"}},{"id":1,"email":"f","name":"m","company":{"name":"d"}}]`
	got, err := DecodeUsers([]byte(body))
	if err != nil {
		t.Fatalf("DecodeUsers returned error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "n" || got[1].Name != "m" {
		t.Fatalf("records = %+v, want both in server order", got)
	}

	want := []string{`duplicate record id "1" at 0 and 1`}
	if diff := cmp.Diff(want, DuplicateKeys(got)); diff != "" {
		t.Fatalf("DuplicateKeys mismatch (-want +got):\n%s", diff)
	}
	if dups := DuplicateKeys([]User{{ID: 1}, {ID: 2}}); len(dups) != 0 {
		t.Fatalf("DuplicateKeys unique = %v, want none", dups)
	}
}

const feedBody = `{"feed":{"title":"Top Albums","results":[
	{"artistName":"Rod Wave","id":"1700000001","name":"Nostalgia","releaseDate":"2023-09-15","kind":"albums",
	 "artistUrl":"https://music.apple.com/us/artist/rod-wave/1140623439","artworkUrl100":"https://example.com/a.jpg"},
	{"artistName":"Olivia Rodrigo","id":"1700000002","releaseDate":"2023-09-08",
	 "artistUrl":"https://music.apple.com/us/artist/olivia-rodrigo/979458609","artworkUrl100":"https://example.com/b.jpg"}
]}}`

func TestDecodeMusicians(t *testing.T) {
	got, err := DecodeMusicians([]byte(feedBody))
	if err != nil {
		t.Fatalf("DecodeMusicians returned error: %v", err)
	}
	want := []Musician{
		{ID: "1700000001", ArtistName: "Rod Wave", ReleaseDate: "2023-09-15",
			ArtistURL: "https://music.apple.com/us/artist/rod-wave/1140623439", ArtworkURL100: "https://example.com/a.jpg"},
		{ID: "1700000002", ArtistName: "Olivia Rodrigo", ReleaseDate: "2023-09-08",
			ArtistURL: "https://music.apple.com/us/artist/olivia-rodrigo/979458609", ArtworkURL100: "https://example.com/b.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeMusicians mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMusicians_KeysAreVerbatim(t *testing.T) {
	body := `{"feed":{"results":[{"id":"1","artist_name":"x","releaseDate":"d","artistUrl":"u","artworkUrl100":"w"}]}}`
	_, err := DecodeMusicians([]byte(body))
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "artistName" {
		t.Fatalf("error = %v, want missing artistName (snake_case not converted)", err)
	}
}

func TestDecodeMusicians_Failures(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		missing string
	}{
		{"unexpected object", `{"not":"expected"}`, "feed"},
		{"no results", `{"feed":{}}`, "feed.results"},
		{"array body", `[]`, ""},
		{"numeric id", `{"feed":{"results":[{"id":1,"artistName":"a","releaseDate":"d","artistUrl":"u","artworkUrl100":"w"}]}}`, ""},
		{"missing artwork", `{"feed":{"results":[{"id":"1","artistName":"a","releaseDate":"d","artistUrl":"u"}]}}`, "artworkUrl100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeMusicians([]byte(tc.body))
			if err == nil {
				t.Fatalf("DecodeMusicians(%s) returned nil error", tc.body)
			}
			if tc.missing == "" {
				return
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) || mf.Field != tc.missing {
				t.Fatalf("error = %v, want missing field %q", err, tc.missing)
			}
		})
	}
}

func TestRecordPresentation(t *testing.T) {
	u := User{ID: 7, Email: "e@x", Name: "Neo", Company: Company{Name: "Zion"}}
	if u.Key() != "7" || u.Title() != "Neo" || u.Subtitle() != "e@x" || u.Link() != "" {
		t.Fatalf("user presentation = %q %q %q %q", u.Key(), u.Title(), u.Subtitle(), u.Link())
	}
	if f := u.Fields(); len(f) != 4 || f[3].Value != "Zion" {
		t.Fatalf("user fields = %#v", f)
	}

	m := Musician{ID: "9", ArtistName: "Band", ReleaseDate: "2023-09-15", ArtistURL: "https://a", ArtworkURL100: "https://b"}
	if m.Link() != "https://a" || m.Title() != "Band" {
		t.Fatalf("musician link/title = %q %q", m.Link(), m.Title())
	}
	if got := m.ParsedReleaseDate(); !got.Equal(time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParsedReleaseDate = %v", got)
	}
	if got := (Musician{ReleaseDate: "soon"}).ParsedReleaseDate(); !got.IsZero() {
		t.Fatalf("ParsedReleaseDate(invalid) = %v, want zero", got)
	}
}

func TestEndpoints(t *testing.T) {
	u := UsersEndpoint("https://example.com/users")
	if u.Name != UsersResource || u.URL != "https://example.com/users" || u.Decode == nil {
		t.Fatalf("UsersEndpoint = %+v", u)
	}
	m := MusiciansEndpoint("https://example.com/albums.json")
	if m.Name != MusiciansResource || m.Decode == nil {
		t.Fatalf("MusiciansEndpoint = %+v", m)
	}
}
