package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pokeguess/internal/model"
	"pokeguess/internal/service"
)

type stubBoard struct{}

func (stubBoard) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return []model.LeaderboardEntry{{PlayerID: "p_9", Nickname: "red", Score: 90, Rank: 1}}, nil
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := &Connection{PlayerID: "a", Send: make(chan []byte, 4), Hub: hub}
	b := &Connection{PlayerID: "b", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastAll("leaderboard_update", map[string]int{"n": 1})

	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.Send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Type != MsgLeaderboardUpdate || string(msg.Payload) != `{"n":1}` {
				t.Errorf("message = %s %s", msg.Type, msg.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s got no broadcast", conn.PlayerID)
		}
	}

	hub.Unregister(a)
	if _, ok := <-a.Send; ok {
		t.Error("Send not closed after Unregister")
	}
}

func TestHub_CloseTwice(t *testing.T) {
	hub := NewHub()
	conn := &Connection{PlayerID: "a", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(conn)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Close()
		}()
	}
	wg.Wait()

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Error("unexpected message after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("Send not closed after Close")
	}
	hub.BroadcastAll("leaderboard_update", nil)
}

func TestHandler_LeaderboardWS(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	authSvc := service.NewAuthService("secret", time.Hour)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/leaderboard", NewHandler(hub, authSvc, nil).LeaderboardWS)
	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/leaderboard"

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bad", nil); err == nil || resp.StatusCode != 401 {
		t.Fatalf("bad token accepted: %v", err)
	}

	token, _ := authSvc.IssuePlayerToken("p_1", "ash")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastAll("leaderboard_update", map[string]interface{}{"leaderboard": []string{}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgLeaderboardUpdate {
		t.Errorf("type = %s", msg.Type)
	}
}

func TestHandler_SendsSnapshotOnConnect(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	authSvc := service.NewAuthService("secret", time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, authSvc, stubBoard{}).LeaderboardWS))
	defer srv.Close()

	token, _ := authSvc.IssuePlayerToken("p_1", "ash")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    MessageType `json:"type"`
		Payload struct {
			Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgLeaderboardUpdate || len(msg.Payload.Leaderboard) != 1 || msg.Payload.Leaderboard[0].Score != 90 {
		t.Errorf("snapshot = %+v", msg)
	}
}
