package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/l1jgo/teams/internal/command"
	"github.com/matryer/is"
	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	is := is.New(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	board := &Board{Server: "teamsd-eu1", StartedAt: started}
	s := NewServer("127.0.0.1:0", command.NewQueue(1, zap.NewNop()), board, zap.NewNop())

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	is.Equal(rec.Code, http.StatusOK)

	board.Publish(Status{Teams: map[string]int{"party": 2}, Dirty: 3, LastFlushFailures: 1})
	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	is.Equal(rec.Code, http.StatusServiceUnavailable)

	var st Status
	is.NoErr(json.NewDecoder(rec.Body).Decode(&st))
	is.Equal(st.Teams["party"], 2)
	is.Equal(st.Dirty, 3)
	is.Equal(st.Server, "teamsd-eu1")
	is.True(st.StartedAt.Equal(started))
}

func TestCommandsEnqueue(t *testing.T) {
	is := is.New(t)
	q := command.NewQueue(4, zap.NewNop())
	s := NewServer("127.0.0.1:0", q, &Board{}, zap.NewNop())

	// stand-in for the game loop
	go func() {
		req := <-q.Requests()
		req.Reply(command.Result{Lines: []string{req.Actor + ": " + req.Line}})
	}()

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"actor":"alice","line":"party leave"}`)
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands", body))
	is.Equal(rec.Code, http.StatusOK)

	var res command.Result
	is.NoErr(json.NewDecoder(rec.Body).Decode(&res))
	is.Equal(res.Lines, []string{"alice: party leave"})
}

func TestCommandsRejectsBadInput(t *testing.T) {
	is := is.New(t)
	s := NewServer("127.0.0.1:0", command.NewQueue(1, zap.NewNop()), &Board{}, zap.NewNop())

	for _, body := range []string{"{", `{"actor":"alice"}`} {
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body)))
		is.Equal(rec.Code, http.StatusBadRequest)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands", nil))
	is.Equal(rec.Code, http.StatusMethodNotAllowed)
}

func TestCommandsQueueFull(t *testing.T) {
	is := is.New(t)
	q := command.NewQueue(1, zap.NewNop())
	q.Submit(command.Request{Line: "flush"})
	s := NewServer("127.0.0.1:0", q, &Board{}, zap.NewNop())

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(`{"line":"flush"}`)))
	is.Equal(rec.Code, http.StatusServiceUnavailable)
}
