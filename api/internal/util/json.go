package util

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON means the text carried nothing decodable as JSON.
var ErrNoJSON = errors.New("no JSON value in model text")

// ExtractJSON pulls a JSON value out of free-form model text. Models often wrap
// the object in commentary or code fences, so the parse is tiered: the whole
// string first, then the substring between the first '{' and the last '}'.
// It never panics; a miss is reported as ErrNoJSON.
func ExtractJSON(text string) (json.RawMessage, error) {
	s := StripCodeFences(text)
	if s == "" {
		return nil, ErrNoJSON
	}
	if raw, ok := tryDecode(s); ok {
		return raw, nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return nil, ErrNoJSON
	}
	if raw, ok := tryDecode(s[start : end+1]); ok {
		return raw, nil
	}
	return nil, ErrNoJSON
}

// ExtractInto decodes the JSON value found in text into v.
func ExtractInto(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func tryDecode(s string) (json.RawMessage, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}
