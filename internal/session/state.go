package session

import "github.com/devilmonastery/jobfinder/internal/domain/entities"

// State is the routing decision derived from the signed-in identity and
// whether that identity has a profile record.
type State int

const (
	// Checking is the initial state, and the state while a profile check is outstanding
	Checking State = iota
	// Unauthenticated means no identity is signed in
	Unauthenticated
	// AuthenticatedIncompleteProfile means signed in without a profile record (or the check failed)
	AuthenticatedIncompleteProfile
	// AuthenticatedComplete means signed in with a profile record
	AuthenticatedComplete
)

// States lists every State in declaration order
var States = []State{Checking, Unauthenticated, AuthenticatedIncompleteProfile, AuthenticatedComplete}

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedIncompleteProfile:
		return "authenticated_incomplete_profile"
	case AuthenticatedComplete:
		return "authenticated_complete"
	default:
		return "unknown"
	}
}

// Authenticated reports whether an identity is signed in and resolved
func (s State) Authenticated() bool {
	return s == AuthenticatedIncompleteProfile || s == AuthenticatedComplete
}

// Snapshot is a consistent read of the resolver's current value.
// Version increases by one on every change, so consumers can ignore
// snapshots older than one they have already applied.
type Snapshot struct {
	State    State
	Identity *entities.Identity
	Version  uint64
}
