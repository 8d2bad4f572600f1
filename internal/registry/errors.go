package registry

import (
	"errors"
	"fmt"
)

// Lookup failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrTeamNotFound   = fmt.Errorf("team %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
)

// Rejected commands. Registry state is unchanged when one is returned.
var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidType      = fmt.Errorf("%w: not allowed for this team type", ErrInvalidOperation)
	ErrAlreadyInParty   = fmt.Errorf("%w: already in a party", ErrInvalidOperation)
	ErrNotInParty       = fmt.Errorf("%w: not in a party", ErrInvalidOperation)
	ErrNotMember        = fmt.Errorf("%w: not a member of this team", ErrInvalidOperation)
	ErrInvalidValue     = fmt.Errorf("%w: invalid value", ErrInvalidOperation)
)

// ErrDuplicateTeam is reported as a load failure when two documents carry
// the same team id.
var ErrDuplicateTeam = errors.New("duplicate team id")

// ErrDuplicateMember is reported as a load failure when a player is listed by
// more than one party or server team.
var ErrDuplicateMember = errors.New("player in more than one team")
