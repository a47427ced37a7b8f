package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"party-deduction/internal/config"
	"party-deduction/internal/game"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, playerID string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set(playerHeader, playerID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

// createRoom creates a room hosted by hostID and returns its id.
func createRoom(t *testing.T, ts *httptest.Server, hostID, gameType string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", hostID, map[string]any{
		"name":      "Host",
		"game_type": gameType,
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	room := body["room"].(map[string]any)
	return room["id"].(string)
}

func addAI(t *testing.T, ts *httptest.Server, roomID, hostID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/ai", hostID, nil)
		expectStatus(t, resp, http.StatusOK)
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []game.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, events []game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recordingPublisher) count(kind game.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, event := range r.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}

type testService struct {
	*Service
	clock  *testClock
	rooms  *MemoryRooms
	stats  *MemoryStats
	events *recordingPublisher
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	clock := newTestClock()
	rooms := NewMemoryRooms()
	stats := NewMemoryStats()
	events := &recordingPublisher{}
	presence := NewMemoryPresence(15 * time.Second)
	presence.clock = clock.Now
	svc := NewService(ServiceDeps{
		Engine:   game.NewEngine(game.TemplateGenerator{}, rand.New(rand.NewSource(11)), game.EngineOptions{}),
		Rooms:    rooms,
		Stats:    stats,
		Events:   events,
		Presence: presence,
		Words:    NewStaticWords([]game.WordPair{{Civilian: "coffee", Undercover: "tea"}}),
		Now:      clock.Now,
	})
	return &testService{Service: svc, clock: clock, rooms: rooms, stats: stats, events: events}
}

// seededRoom creates a room with one human host and ai AI seats.
func (ts *testService) seededRoom(t *testing.T, gameType game.GameType, ai int) Room {
	t.Helper()
	ctx := context.Background()
	room, err := ts.CreateRoom(ctx, gameType, "host", "Host", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i := 0; i < ai; i++ {
		if room, _, err = ts.AddAI(ctx, room.ID, "host", ""); err != nil {
			t.Fatalf("add ai: %v", err)
		}
	}
	return room
}
