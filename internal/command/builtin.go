package command

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/team"
)

// RegisterBuiltins installs the team commands.
func RegisterBuiltins(reg *Registry) {
	reg.Register("help", LevelPlayer, false, "help", func(c *Context) error {
		for _, u := range reg.Usage(c.Level) {
			c.Reply("  %s", u)
		}
		return nil
	})
	reg.Register("login", LevelAdmin, false, "login <uuid> <name>", cmdLogin)
	reg.Register("party create", LevelPlayer, true, "party create <name>", cmdPartyCreate)
	reg.Register("party join", LevelPlayer, true, "party join <team>", cmdPartyJoin)
	reg.Register("party leave", LevelPlayer, true, "party leave", cmdPartyLeave)
	reg.Register("server create", LevelAdmin, true, "server create <name>", cmdServerCreate)
	reg.Register("server delete", LevelAdmin, false, "server delete <team>", cmdServerDelete)
	reg.Register("team info", LevelPlayer, false, "team info [team]", cmdTeamInfo)
	reg.Register("team list", LevelPlayer, false, "team list [player|party|server]", cmdTeamList)
	reg.Register("team set", LevelPlayer, false, "team set <team> <property> <value>", cmdTeamSet)
	reg.Register("team colors", LevelPlayer, false, "team colors", cmdTeamColors)
	reg.Register("team rank", LevelPlayer, false, "team rank <team> <player> <member|officer|owner>", cmdTeamRank)
	reg.Register("flush", LevelAdmin, false, "flush", cmdFlush)
}

func cmdLogin(c *Context) error {
	if len(c.Args) != 2 {
		return c.usage("login <uuid> <name>")
	}
	id, err := uuid.Parse(c.Args[0])
	if err != nil {
		return fmt.Errorf("%w: bad player id: %v", registry.ErrInvalidValue, err)
	}
	t, created, err := c.Deps.Registry.RegisterPlayer(id, c.Args[1])
	if err != nil {
		return err
	}
	if created {
		c.Reply("Registered %s.", t.DisplayName())
	} else {
		c.Reply("Welcome back, %s.", t.PlayerName())
	}
	return nil
}

func cmdPartyCreate(c *Context) error {
	name := strings.Join(c.Args, " ")
	if name == "" {
		return c.usage("party create <name>")
	}
	t, err := c.Deps.Registry.CreateParty(c.Actor, name)
	if err != nil {
		return err
	}
	c.Reply("Created party %s.", t.StringID())
	return nil
}

func cmdPartyJoin(c *Context) error {
	if len(c.Args) != 1 {
		return c.usage("party join <team>")
	}
	reg := c.Deps.Registry
	t, err := reg.TeamByName(c.Args[0])
	if err != nil {
		return err
	}
	if c.Level < LevelAdmin && !t.Type().IsParty() {
		return fmt.Errorf("%w: %s teams are assigned by admins", ErrPermission, t.Type())
	}
	if c.Level < LevelAdmin && !t.FreeToJoin() {
		return fmt.Errorf("%w: %s is invite only", ErrPermission, t.DisplayName())
	}
	if err := reg.JoinParty(c.Actor, t.ID()); err != nil {
		return err
	}
	c.Reply("Joined %s.", t.DisplayName())
	return nil
}

func cmdPartyLeave(c *Context) error {
	reg := c.Deps.Registry
	t, err := reg.EffectiveTeam(c.Actor)
	if err != nil {
		return err
	}
	name := t.DisplayName()
	if err := reg.LeaveParty(c.Ctx, c.Actor); err != nil {
		return err
	}
	c.Reply("Left %s.", name)
	return nil
}

func cmdServerCreate(c *Context) error {
	name := strings.Join(c.Args, " ")
	if name == "" {
		return c.usage("server create <name>")
	}
	t, err := c.Deps.Registry.CreateServerTeam(c.Actor, name)
	if err != nil {
		return err
	}
	c.Reply("Created server team %s.", t.StringID())
	return nil
}

func cmdServerDelete(c *Context) error {
	if len(c.Args) != 1 {
		return c.usage("server delete <team>")
	}
	reg := c.Deps.Registry
	t, err := reg.TeamByName(c.Args[0])
	if err != nil {
		return err
	}
	if !t.Type().IsServer() {
		return fmt.Errorf("%w: %s is a %s team", registry.ErrInvalidType, t.DisplayName(), t.Type())
	}
	name := t.DisplayName()
	if err := reg.DeleteTeam(c.Ctx, t.ID()); err != nil {
		return err
	}
	c.Reply("Deleted %s.", name)
	return nil
}

// teamArg resolves an explicit team reference, or the caller's effective team
// when none is given.
func teamArg(c *Context, args []string) (*team.Team, error) {
	reg := c.Deps.Registry
	if len(args) > 0 {
		return reg.TeamByName(args[0])
	}
	if c.Actor == uuid.Nil {
		return nil, ErrNeedsPlayer
	}
	return reg.EffectiveTeam(c.Actor)
}

func cmdTeamInfo(c *Context) error {
	t, err := teamArg(c, c.Args)
	if err != nil {
		return err
	}
	c.Reply("%s [%s] %s", t.DisplayName(), t.Type(), t.ID())
	if d := t.Description(); d != "" {
		c.Reply("  %s", d)
	}
	c.Reply("  color=%s free_to_join=%t created=%s", t.Color(), t.FreeToJoin(), t.CreatedAt().Format("2006-01-02 15:04:05"))
	for _, m := range t.Members() {
		c.Reply("  %-7s %s", t.RankOf(m), playerLabel(c.Deps.Registry, m))
	}
	return nil
}

func playerLabel(reg *registry.Registry, p uuid.UUID) string {
	if own, err := reg.PlayerTeam(p); err == nil && own.PlayerName() != "" {
		return own.PlayerName()
	}
	return p.String()
}

func cmdTeamList(c *Context) error {
	var filter team.Type
	if len(c.Args) > 0 {
		typ, err := team.ParseType(c.Args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", registry.ErrInvalidValue, err)
		}
		filter = typ
	}
	n := 0
	for _, t := range c.Deps.Registry.Teams() {
		if filter != 0 && t.Type() != filter {
			continue
		}
		c.Reply("%-6s %-24s %d members", t.Type(), t.StringID(), t.MemberCount())
		n++
	}
	c.Reply("%d teams", n)
	return nil
}

// requireRank rejects player-level callers ranked below min in t.
func requireRank(c *Context, t *team.Team, min team.Rank) error {
	if c.Level >= LevelAdmin {
		return nil
	}
	if c.Actor == uuid.Nil || t.RankOf(c.Actor) < min {
		return fmt.Errorf("%w: requires %s of %s", ErrPermission, min, t.DisplayName())
	}
	return nil
}

func cmdTeamSet(c *Context) error {
	if len(c.Args) < 3 {
		return c.usage("team set <team> <property> <value>")
	}
	reg := c.Deps.Registry
	t, err := reg.TeamByName(c.Args[0])
	if err != nil {
		return err
	}
	if err := requireRank(c, t, team.RankOfficer); err != nil {
		return err
	}
	key := c.Args[1]
	p, ok := team.LookupProperty(key)
	if !ok {
		return fmt.Errorf("%w: unknown property %q, one of %s",
			registry.ErrInvalidValue, key, strings.Join(team.PropertyKeys(), ", "))
	}
	value := strings.Join(c.Args[2:], " ")
	if p == team.PropColor && !strings.HasPrefix(value, "#") && c.Deps.Colors != nil {
		named, ok := c.Deps.Colors.Lookup(value)
		if !ok {
			return fmt.Errorf("%w: unknown color %q, see team colors", registry.ErrInvalidValue, value)
		}
		value = named.String()
	}
	if err := reg.SetProperty(t.ID(), key, value); err != nil {
		return err
	}
	c.Reply("%s: %s = %s", t.DisplayName(), key, p.Format(t.Property(p)))
	return nil
}

func cmdTeamColors(c *Context) error {
	if c.Deps.Colors == nil {
		c.Reply("Colors are set as #rrggbb.")
		return nil
	}
	for _, name := range c.Deps.Colors.Names() {
		color, _ := c.Deps.Colors.Lookup(name)
		c.Reply("  %-12s %s", name, color)
	}
	return nil
}

func cmdTeamRank(c *Context) error {
	if len(c.Args) != 3 {
		return c.usage("team rank <team> <player> <member|officer|owner>")
	}
	reg := c.Deps.Registry
	t, err := reg.TeamByName(c.Args[0])
	if err != nil {
		return err
	}
	if err := requireRank(c, t, team.RankOwner); err != nil {
		return err
	}
	p, err := reg.PlayerByName(c.Args[1])
	if err != nil {
		return err
	}
	rank, err := team.ParseRank(strings.ToLower(c.Args[2]))
	if err != nil {
		return fmt.Errorf("%w: %v", registry.ErrInvalidValue, err)
	}
	if err := reg.SetRank(t.ID(), p, rank); err != nil {
		return err
	}
	c.Reply("%s is now %s of %s.", playerLabel(reg, p), rank, t.DisplayName())
	return nil
}

func cmdFlush(c *Context) error {
	rep := c.Deps.Registry.Flush(c.Ctx)
	c.Reply("Flushed %d teams (registry written: %t).", rep.TeamsWritten, rep.RegistryWritten)
	if len(rep.Failures) > 0 {
		return fmt.Errorf("%d writes failed, first: %w", len(rep.Failures), rep.Failures[0])
	}
	return nil
}
