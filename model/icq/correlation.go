package icq

import (
	"fmt"
	"strings"
)

// RegisterBalancesReplyID is the fixed correlation tag attached to balance
// registrations in legacy correlation mode.
const RegisterBalancesReplyID uint64 = 1

// RequestCorrelationFlag marks correlation tags which were allocated for a
// single registration request. The remaining bits carry the sequence number.
const RequestCorrelationFlag uint64 = 1 << 63

// RequestCorrelationID returns the per-request correlation tag for the given sequence number.
func RequestCorrelationID(seq uint64) uint64 {
	return RequestCorrelationFlag | seq
}

// IsRequestCorrelationID returns true if the tag was allocated for a single registration request.
func IsRequestCorrelationID(id uint64) bool {
	return id&RequestCorrelationFlag != 0
}

// CorrelationMode selects how acknowledgments are bound to the registration they belong to.
type CorrelationMode string

const (
	// CorrelationLegacy binds every acknowledgment to the most recently
	// registered subject. Registering a new subject before the previous
	// acknowledgment arrived rebinds that acknowledgment to the new subject.
	CorrelationLegacy CorrelationMode = "legacy"
	// CorrelationPerRequest allocates a fresh tag for every registration and
	// keeps one pending entry per outstanding request.
	CorrelationPerRequest CorrelationMode = "per-request"
)

func (m CorrelationMode) String() string {
	return string(m)
}

// ParseCorrelationMode parses the textual representation of a CorrelationMode.
func ParseCorrelationMode(s string) (CorrelationMode, error) {
	switch mode := CorrelationMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case CorrelationLegacy, CorrelationPerRequest:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown correlation mode %q", s)
	}
}
