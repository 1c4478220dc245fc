package userboard

import (
	"encoding/json"
	"errors"
	"fmt"
)

// errNoRecords is returned when the records path does not lead to an array.
var errNoRecords = errors.New("records path does not resolve to an array")

// decodeUsers decodes a JSON body into users, first walking path to find the
// array. A null array decodes to an empty, non-nil slice.
func decodeUsers(body []byte, path []string) ([]User, error) {
	if len(path) == 0 {
		var users []User
		if err := json.Unmarshal(body, &users); err != nil {
			return nil, err
		}
		if users == nil {
			users = []User{}
		}
		return users, nil
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	node, err := walkJSONPath(data, path)
	if err != nil {
		return nil, err
	}

	// round-trip the sub-tree so User's json tags do the field mapping
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	users := []User{}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// walkJSONPath walks a decoded JSON structure using dot notation parts and
// returns the array found at the end.
func walkJSONPath(data interface{}, parts []string) ([]interface{}, error) {
	current := data

	for i, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an object", errNoRecords, joinPath(parts[:i]))
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("%w: field %q not found", errNoRecords, joinPath(parts[:i+1]))
		}
	}

	switch v := current.(type) {
	case []interface{}:
		return v, nil
	case nil:
		return []interface{}{}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", errNoRecords, v)
	}
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return "$"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}
