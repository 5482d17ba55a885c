package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RefID is the human-readable item reference: workspace prefix code plus the
// per-workspace sequence number, e.g. "WEB-42".
type RefID struct {
	PrefixCode string
	SeqNum     int64
}

// ParseRefID parses a "PREFIX-SEQ" string. A malformed input is an error:
// ref ids arrive from URLs and user input and must never be guessed at.
func ParseRefID(s string) (RefID, error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return RefID{}, fmt.Errorf("invalid item ref id %q", s)
	}
	seq, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || seq <= 0 {
		return RefID{}, fmt.Errorf("invalid item ref id %q", s)
	}
	return RefID{PrefixCode: s[:i], SeqNum: seq}, nil
}

// String returns the "PREFIX-SEQ" form.
func (r RefID) String() string {
	return r.PrefixCode + "-" + strconv.FormatInt(r.SeqNum, 10)
}
