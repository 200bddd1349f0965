package model

import (
	"bytes"
	"strconv"
	"strings"
)

// RawCoordinate holds a coordinate exactly as the client sent it: a JSON
// number, a string, or null. Interpretation happens during pricing.
type RawCoordinate string

// UnmarshalJSON accepts any JSON scalar and never fails on content.
func (c *RawCoordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if s, err := strconv.Unquote(string(data)); err == nil {
		*c = RawCoordinate(strings.TrimSpace(s))
		return nil
	}
	*c = RawCoordinate(data)
	return nil
}
