// Package console reads operator commands from a terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/l1jgo/teams/internal/command"
	"go.uber.org/zap"
)

// Console turns input lines into queued requests. A line starting with
// "@<player>" runs the rest of the line as that player; other lines run with
// no player. Both run at admin level.
type Console struct {
	in    io.Reader
	out   io.Writer
	mu    sync.Mutex // serializes writes to out
	queue *command.Queue
	log   *zap.Logger
}

func New(in io.Reader, out io.Writer, queue *command.Queue, log *zap.Logger) *Console {
	return &Console{in: in, out: out, queue: queue, log: log}
}

// ReadLoop runs in its own goroutine until the input is exhausted.
func (c *Console) ReadLoop() {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		req, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		req.Reply = c.print
		if !c.queue.Submit(req) {
			c.Println("busy, try again")
		}
	}
	if err := sc.Err(); err != nil {
		c.log.Error("console read failed", zap.Error(err))
	}
}

// ParseLine splits off an optional "@player" prefix. Blank lines and
// "#" comments are ignored.
func ParseLine(line string) (command.Request, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return command.Request{}, false
	}
	req := command.Request{Level: command.LevelAdmin}
	if strings.HasPrefix(line, "@") {
		actor, rest, _ := strings.Cut(line[1:], " ")
		if actor == "" {
			return command.Request{}, false
		}
		req.Actor = actor
		line = strings.TrimSpace(rest)
	}
	req.Line = line
	return req, true
}

func (c *Console) print(res command.Result) {
	for _, l := range res.Lines {
		c.Println(l)
	}
	if res.Error != "" {
		c.Println("error: " + res.Error)
	}
}

// Println writes one line to the console output.
func (c *Console) Println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
