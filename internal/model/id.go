package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an opaque identifier as exchanged on the wire.  The backend
// emits string ids, but numeric JSON values are accepted as well so a
// client can talk to a backend that serialises primary keys as numbers.
type ID string

// UnmarshalJSON accepts both `"12"` and `12`.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("model: invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Empty reports whether the id is blank.
func (id ID) Empty() bool { return strings.TrimSpace(string(id)) == "" }

// Uint64 parses the id as a positive database key.
func (id ID) Uint64() (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("model: id %q is not a positive integer", string(id))
	}
	return n, nil
}

// IDFromUint64 formats a database key as a wire id.
func IDFromUint64(n uint64) ID { return ID(strconv.FormatUint(n, 10)) }

// JoinIDs renders ids as the comma separated list used in query strings.
func JoinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// SplitIDs parses a comma separated id list, skipping blank entries.
func SplitIDs(s string) []ID {
	var out []ID
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ID(p))
		}
	}
	return out
}
