package team

import "fmt"

// Rank orders a member's authority inside a team. Higher is stronger.
type Rank int16

const (
	RankNone    Rank = 0
	RankMember  Rank = 100
	RankOfficer Rank = 500
	RankOwner   Rank = 1000 // at most one per team
)

func (r Rank) String() string {
	switch r {
	case RankNone:
		return "none"
	case RankMember:
		return "member"
	case RankOfficer:
		return "officer"
	case RankOwner:
		return "owner"
	default:
		return fmt.Sprintf("rank(%d)", int16(r))
	}
}

// ParseRank resolves a serialized rank name. "none" is rejected: a player
// without a rank is simply absent from the rank map.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "member":
		return RankMember, nil
	case "officer":
		return RankOfficer, nil
	case "owner":
		return RankOwner, nil
	}
	return RankNone, fmt.Errorf("unknown rank %q", s)
}

// IsMember reports whether the rank counts toward team membership.
func (r Rank) IsMember() bool {
	return r >= RankMember
}
