// Package records defines the resource records shown by listfeed and the
// decoders that turn endpoint payloads into them.
//
// # Resources
//
//   - users: GET https://jsonplaceholder.typicode.com/users, a JSON array of
//     {id, email, name, company:{name}}. Keys are converted from snake_case.
//   - musicians: GET https://rss.applemarketingtools.com/api/v2/us/music/most-played/10/albums.json,
//     an envelope {feed:{results:[...]}} whose entries carry
//     {id, artistName, releaseDate, artistUrl, artworkUrl100}. Keys are
//     already camelCase and are used verbatim.
//
// # Strictness
//
// Every documented key is required. A missing key, a value of the wrong JSON
// type or a duplicated id fails the whole payload, which the fetch controller
// reports as a decode failure. Unknown keys are ignored. Records keep server
// order.
//
// # Presentation
//
// User and Musician implement Record, the read-only view the UI renders:
// Key, Title, Subtitle, Fields and Link (the artist page for musicians).
package records
