package command

import "go.uber.org/zap"

// Request is one command line waiting for the game loop.
type Request struct {
	Actor string // player name or id to act as; "" for none
	Level Level
	Line  string
	// Reply is called on the game loop with the outcome. May be nil.
	Reply func(Result)
}

// Queue carries requests from console and HTTP goroutines to the game loop.
type Queue struct {
	ch  chan Request
	log *zap.Logger
}

func NewQueue(size int, log *zap.Logger) *Queue {
	return &Queue{ch: make(chan Request, size), log: log}
}

// Submit enqueues without blocking. Returns false when the queue is full.
func (q *Queue) Submit(req Request) bool {
	select {
	case q.ch <- req:
		return true
	default:
		q.log.Warn("command queue full, request dropped", zap.String("line", req.Line))
		return false
	}
}

// Requests returns the channel drained by CommandSystem.
func (q *Queue) Requests() <-chan Request {
	return q.ch
}
