package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"coding-relay-console/internal/domain"
	"github.com/gorilla/websocket"
)

func TestLeaderboardStreamPushesScoreChanges(t *testing.T) {
	c := newTestConsole(t)

	u := "ws" + c.server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	lb := readLeaderboard(t, conn)
	if len(lb.Entries) != 2 || lb.Entries[0].TeamID != "t1" {
		t.Fatalf("expected t1 leading initially, got %+v", lb.Entries)
	}

	status := c.do(t, http.MethodPost, "/api/scores/add", map[string]any{
		"team_id":                  "t2",
		"difficulty":               "hard",
		"test_cases_passed":        1,
		"hidden_test_cases_viewed": "yes",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	// t2 now has 1750 and overtakes t1
	for i := 0; i < 5; i++ {
		lb = readLeaderboard(t, conn)
		if lb.Entries[0].TeamID == "t2" {
			if lb.Entries[0].Score != 1750 {
				t.Fatalf("expected 1750, got %d", lb.Entries[0].Score)
			}
			return
		}
	}
	t.Fatalf("leaderboard never showed t2 leading: %+v", lb.Entries)
}

func TestLeaderboardStreamRejectsUnknownMessages(t *testing.T) {
	c := newTestConsole(t)

	u := "ws" + c.server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readLeaderboard(t, conn)
	if err := conn.WriteJSON(map[string]string{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, _ := readNext(t, conn)
	if typ != "error" {
		t.Fatalf("expected error message, got %s", typ)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	typ, msg := readNext(t, conn)
	if typ != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", typ)
	}
	var lb domain.Leaderboard
	if err := json.Unmarshal(msg, &lb); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	return lb
}

func readNext(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func TestEnqueueStopsAfterWriterExit(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})

	msg := outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "x"}}
	if !enqueue(send, writerDone, msg) {
		t.Fatalf("expected first message queued")
	}

	close(writerDone)
	done := make(chan bool, 1)
	go func() { done <- enqueue(send, writerDone, msg) }()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected enqueue to report a dead writer")
		}
	case <-time.After(time.Second):
		t.Fatalf("enqueue blocked on a full buffer after the writer exited")
	}
}
