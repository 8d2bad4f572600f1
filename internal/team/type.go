package team

import "fmt"

// Type distinguishes the three team variants. The serialized name doubles as
// the storage directory for teams of that type.
type Type byte

const (
	TypePlayer Type = iota + 1 // one per known player, id == player id
	TypeParty                  // player-created group
	TypeServer                 // admin-created group
)

// Types returns every team type in load order. Player teams load first so the
// known-players index exists before party membership is overlaid.
func Types() []Type {
	return []Type{TypePlayer, TypeParty, TypeServer}
}

func (t Type) String() string {
	switch t {
	case TypePlayer:
		return "player"
	case TypeParty:
		return "party"
	case TypeServer:
		return "server"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ParseType resolves a serialized type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown team type %q", s)
}

func (t Type) IsPlayer() bool { return t == TypePlayer }
func (t Type) IsParty() bool { return t == TypeParty }
func (t Type) IsServer() bool { return t == TypeServer }

// Deletable reports whether teams of this type may be deleted explicitly.
// Player teams live as long as the player is known.
func (t Type) Deletable() bool {
	return t == TypeParty || t == TypeServer
}
