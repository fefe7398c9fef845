package vrfaf

import (
	"fmt"
	"strings"

	"github.com/newtron-network/xrvrf/pkg/util"
)

// State selects how want is applied on top of have.
type State string

const (
	Merged     State = "merged"
	Replaced   State = "replaced"
	Overridden State = "overridden"
	Deleted    State = "deleted"
	Parsed     State = "parsed"
	Gathered   State = "gathered"
)

var allStates = []State{Merged, Replaced, Overridden, Deleted, Parsed, Gathered}

// ParseState converts a state token into a State.
func ParseState(s string) (State, error) {
	for _, st := range allStates {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", util.ErrInvalidState, s, strings.Join(StateNames(), ", "))
}

// StateNames lists the accepted state tokens.
func StateNames() []string {
	names := make([]string, len(allStates))
	for i, st := range allStates {
		names[i] = string(st)
	}
	return names
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, st := range allStates {
		if st == s {
			return true
		}
	}
	return false
}

// ReadOnly is true for states that never produce commands.
func (s State) ReadOnly() bool {
	return s == Parsed || s == Gathered
}

// removesUnmatched is true for states that remove configuration want does not mention.
func (s State) removesUnmatched() bool {
	return s == Overridden || s == Deleted
}
