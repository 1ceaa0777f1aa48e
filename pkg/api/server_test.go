package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
)

type MockController struct {
	mock.Mock
}

func (m *MockController) Forward()     { m.Called() }
func (m *MockController) Back()        { m.Called() }
func (m *MockController) TogglePause() { m.Called() }

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg Message) Message {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, config.AppVersion, body["version"])
}

func TestHealthPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	metrics.Transitions.Inc()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "photosaver_transitions_total")
}

func TestPingPong(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	reply := roundTrip(t, conn, Message{Type: TypePing})
	assert.Equal(t, TypePong, reply.Type)
}

func TestNavigationMessages(t *testing.T) {
	s, ts := newTestServer(t)
	ctrl := new(MockController)
	done := make(chan struct{}, 3)
	ctrl.On("Forward").Run(func(mock.Arguments) { done <- struct{}{} }).Once()
	ctrl.On("Back").Run(func(mock.Arguments) { done <- struct{}{} }).Once()
	ctrl.On("TogglePause").Run(func(mock.Arguments) { done <- struct{}{} }).Once()
	s.SetController(ctrl)

	conn := dial(t, ts)
	for _, typ := range []string{TypeForward, TypeBack, TypeTogglePause} {
		require.NoError(t, conn.WriteJSON(Message{Type: typ}))
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s was not dispatched", typ)
		}
	}
	ctrl.AssertExpectations(t)
}

func TestNavigationWithoutController(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	reply := roundTrip(t, conn, Message{Type: TypeForward})
	assert.Equal(t, TypeError, reply.Type)
}

func TestIsShowing(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)

	reply := roundTrip(t, conn, Message{Type: TypeIsShowing})
	assert.Equal(t, TypeShowing, reply.Type)
	assert.Equal(t, false, reply.Value)

	s.SetHooks(Hooks{IsShowing: func() bool { return true }})
	reply = roundTrip(t, conn, Message{Type: TypeIsShowing})
	assert.Equal(t, true, reply.Value)
}

func TestLifecycleHooks(t *testing.T) {
	s, ts := newTestServer(t)
	closed := make(chan struct{}, 1)
	preview := make(chan struct{}, 1)
	s.SetHooks(Hooks{
		CloseAll:    func() { closed <- struct{}{} },
		ShowPreview: func() { preview <- struct{}{} },
	})
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeShowPreview}))
	require.NoError(t, conn.WriteJSON(Message{Type: TypeCloseAll}))

	for _, ch := range []chan struct{}{preview, closed} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("hook not called")
		}
	}
}

func TestUnknownMessage(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	reply := roundTrip(t, conn, Message{Type: "dance"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Value, "dance")
}

func TestBroadcastPhoto(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts)

	// The ping round trip guarantees the client is registered.
	roundTrip(t, conn, Message{Type: TypePing})

	s.BroadcastPhoto(PhotoEvent{Slot: 2, URL: "https://photos.example/1.jpg", Label: "Ann\nPexels", Source: "Pexels"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type  string     `json:"type"`
		Value PhotoEvent `json:"value"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypePhoto, msg.Type)
	assert.Equal(t, 2, msg.Value.Slot)
	assert.Equal(t, "https://photos.example/1.jpg", msg.Value.URL)
	assert.Equal(t, "Pexels", msg.Value.Source)
}
