package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyStrategy controls how object keys on the wire map to record field names.
type KeyStrategy int

const (
	// KeysVerbatim decodes keys as sent.
	KeysVerbatim KeyStrategy = iota
	// KeysFromSnakeCase rewrites snake_case keys to camelCase before decoding.
	KeysFromSnakeCase
)

// Unmarshal decodes body into dest after applying keys to every object key.
func Unmarshal(body []byte, dest any, keys KeyStrategy) error {
	if keys == KeysVerbatim {
		return json.Unmarshal(body, dest)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	raw, err := convertKeys(raw)
	if err != nil {
		return err
	}
	converted, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	return json.Unmarshal(converted, dest)
}

// convertKeys rewrites every object key. Two keys that convert to the same
// name are an error.
func convertKeys(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(t))
		from := make(map[string]string, len(t))
		for _, k := range keys {
			name := SnakeToCamel(k)
			if prev, ok := from[name]; ok {
				return nil, fmt.Errorf("keys %q and %q both convert to %q", prev, k, name)
			}
			val, err := convertKeys(t[k])
			if err != nil {
				return nil, err
			}
			from[name] = k
			out[name] = val
		}
		return out, nil
	case []any:
		for i := range t {
			val, err := convertKeys(t[i])
			if err != nil {
				return nil, err
			}
			t[i] = val
		}
		return t, nil
	default:
		return v, nil
	}
}

// SnakeToCamel converts "first_name" to "firstName". The first component is
// kept as sent and later components are capitalized, so "URL_path" becomes
// "URLPath". Keys without inner underscores are returned unchanged and
// leading or trailing underscores are preserved, so "_id" stays "_id" and
// "__a_b" becomes "__aB".
func SnakeToCamel(key string) string {
	start := strings.IndexFunc(key, func(r rune) bool { return r != '_' })
	if start < 0 {
		return key
	}
	end := strings.LastIndexFunc(key, func(r rune) bool { return r != '_' }) + 1

	parts := strings.FieldsFunc(key[start:end], func(r rune) bool { return r == '_' })
	if len(parts) == 1 {
		return key
	}

	title := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(key))
	b.WriteString(key[:start])
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(title.String(p))
	}
	b.WriteString(key[end:])
	return b.String()
}
