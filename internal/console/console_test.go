package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/l1jgo/teams/internal/command"
	"github.com/matryer/is"
	"go.uber.org/zap"
)

func TestParseLine(t *testing.T) {
	is := is.New(t)

	req, ok := ParseLine("  team list party ")
	is.True(ok)
	is.Equal(req.Actor, "")
	is.Equal(req.Line, "team list party")
	is.Equal(req.Level, command.LevelAdmin)

	req, ok = ParseLine("@alice party create Night Watch")
	is.True(ok)
	is.Equal(req.Actor, "alice")
	is.Equal(req.Line, "party create Night Watch")

	for _, skip := range []string{"", "   ", "# note", "@"} {
		_, ok = ParseLine(skip)
		is.True(!ok)
	}
}

func TestReadLoopQueuesAndPrints(t *testing.T) {
	is := is.New(t)
	in := strings.NewReader("flush\n\n@bob party leave\n")
	var out bytes.Buffer
	q := command.NewQueue(8, zap.NewNop())

	c := New(in, &out, q, zap.NewNop())
	c.ReadLoop()

	first := <-q.Requests()
	is.Equal(first.Line, "flush")
	second := <-q.Requests()
	is.Equal(second.Actor, "bob")

	second.Reply(command.Result{Lines: []string{"Left Raiders."}})
	first.Reply(command.Result{Error: "boom"})
	is.Equal(out.String(), "Left Raiders.\nerror: boom\n")
}

func TestReadLoopReportsFullQueue(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	q := command.NewQueue(1, zap.NewNop())

	New(strings.NewReader("a\nb\n"), &out, q, zap.NewNop()).ReadLoop()
	is.Equal(out.String(), "busy, try again\n")
}
