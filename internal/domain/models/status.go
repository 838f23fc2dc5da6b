package models

import (
	"strconv"
	"strings"
)

// Status is the canonical, gateway independent transaction status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRefused  Status = "refused"
	StatusRefunded Status = "refunded"
)

var ValidStatuses = map[Status]struct{}{
	StatusPending:  {},
	StatusApproved: {},
	StatusRefused:  {},
	StatusRefunded: {},
}

// IsTerminal reports whether no transition ever leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusRefused || s == StatusRefunded
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := ValidStatuses[s]
	return s, ok
}

// NativeStatus is a status value exactly as a gateway reports it. Gateway A
// speaks text, gateway B speaks integer codes.
type NativeStatus struct {
	Text    string
	Code    int
	Numeric bool
}

func TextStatus(text string) NativeStatus {
	return NativeStatus{Text: text}
}

func CodeStatus(code int) NativeStatus {
	return NativeStatus{Code: code, Numeric: true}
}

func (n NativeStatus) String() string {
	if n.Numeric {
		return strconv.Itoa(n.Code)
	}
	return n.Text
}

// code returns the integer form of n, parsing numeric text when needed.
func (n NativeStatus) code() (int, bool) {
	if n.Numeric {
		return n.Code, true
	}
	c, err := strconv.Atoi(strings.TrimSpace(n.Text))
	if err != nil {
		return 0, false
	}
	return c, true
}
