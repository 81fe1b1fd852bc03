// Package results defines the outcome of one (platform, build) test
// execution and the two-level result set that the store persists and the
// reconciler merges.
package results

import (
	"fmt"
)

// Outcome is the state of one (platform, build) test execution.
//
// Values are ranked by merge priority, weakest first. The rank is not a
// measure of quality: OK has the highest priority and overwrites FAIL.
type Outcome int

const (
	// NoTest means the build was expected but never reported.
	NoTest Outcome = iota + 1
	// Skip means the build was deliberately not run.
	Skip
	// Timeout means the deployment did not finish in time.
	Timeout
	// Error means the deployment failed.
	Error
	// Fail means the deployment succeeded but its tests did not pass.
	Fail
	// OK means the deployment and its tests succeeded.
	OK
)

// outcomeStrings is the wire spelling, indexed by Outcome.
var outcomeStrings = [...]string{
	NoTest:  "NO TEST",
	Skip:    "SKIP",
	Timeout: "TIMEOUT",
	Error:   "ERROR",
	Fail:    "FAIL",
	OK:      "OK",
}

// All returns every outcome in priority order.
func All() []Outcome {
	return []Outcome{NoTest, Skip, Timeout, Error, Fail, OK}
}

// Priority returns the merge rank of o. Invalid outcomes rank 0.
func (o Outcome) Priority() int {
	if !o.Valid() {
		return 0
	}
	return int(o)
}

// Valid reports whether o is one of the six defined outcomes.
func (o Outcome) Valid() bool {
	return o >= NoTest && o <= OK
}

// Acceptable reports whether o does not require attention.
func (o Outcome) Acceptable() bool {
	switch o {
	case NoTest, Skip, OK:
		return true
	default:
		return false
	}
}

// String returns the wire spelling of o.
func (o Outcome) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeStrings[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid outcome %d", int(o))
	}
	return []byte(outcomeStrings[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	parsed, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome maps a wire spelling to its Outcome. Spelling is exact.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range All() {
		if outcomeStrings[o] == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("invalid outcome %q", s)
}

// Max returns the higher-priority outcome, preferring b on a tie.
func Max(a, b Outcome) Outcome {
	if b.Priority() >= a.Priority() {
		return b
	}
	return a
}
