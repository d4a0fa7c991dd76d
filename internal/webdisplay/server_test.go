package webdisplay

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thempra/xiaozhi-esp32/internal/bridge"
	"github.com/Thempra/xiaozhi-esp32/internal/config"
	"github.com/Thempra/xiaozhi-esp32/internal/display"
)

// testAddr rewrites the wildcard listen address into a dialable one.
func testAddr(t *testing.T, srv *Server) string {
	t.Helper()
	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	return "127.0.0.1:" + port
}

func startTestServer(t *testing.T, maxClients int) (*Server, *bridge.DisplayBridge) {
	t.Helper()

	cfg := &config.Config{Port: 0, MaxClients: maxClients}
	hub := NewHub(maxClients)
	store := bridge.NewStateStore(nil)
	mirror := bridge.New(display.NewConsole(io.Discard, nil), store, hub)

	srv := NewServer(cfg, hub, mirror.FullStateJSON)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return srv, mirror
}

func dialDisplay(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+testAddr(t, srv)+"/ws/display", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestStateEndpoint(t *testing.T) {
	srv, mirror := startTestServer(t, 2)
	require.NoError(t, mirror.SetStatus("Listening"))

	resp, err := http.Get("http://" + testAddr(t, srv) + "/api/display/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got struct {
		Type string `json:"type"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "full_state", got.Type)
	assert.Equal(t, "Listening", got.Data.Status)
}

func TestStaticAssetContentTypes(t *testing.T) {
	srv, _ := startTestServer(t, 2)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/", "text/html; charset=utf-8"},
		{"/display.css", "text/css"},
		{"/display.js", "application/javascript"},
	}
	for _, tt := range tests {
		resp, err := http.Get("http://" + testAddr(t, srv) + tt.path)
		require.NoError(t, err, tt.path)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode, tt.path)
		assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"), tt.path)
		assert.NotEmpty(t, body, tt.path)
	}
}

func TestWebSocketSnapshotThenEvents(t *testing.T) {
	srv, mirror := startTestServer(t, 2)
	conn := dialDisplay(t, srv)

	// The first frame is always the full snapshot.
	first := readEvent(t, conn)
	require.Equal(t, "full_state", first["type"])
	data := first["data"].(map[string]interface{})
	assert.Equal(t, "Idle", data["status"])

	// Mutations after connect arrive as ordinary events, in order.
	require.NoError(t, mirror.SetStatus("Listening"))
	require.NoError(t, mirror.SetEmotion("happy"))
	require.NoError(t, mirror.ShowNotification("Hi", 3*time.Second))

	event := readEvent(t, conn)
	assert.Equal(t, "state_update", event["type"])
	assert.Equal(t, "status", event["field"])
	assert.Equal(t, "Listening", event["value"])

	event = readEvent(t, conn)
	assert.Equal(t, "state_update", event["type"])
	assert.Equal(t, "emotion", event["field"])
	assert.Equal(t, "happy", event["value"])

	event = readEvent(t, conn)
	assert.Equal(t, "notification", event["type"])
	assert.Equal(t, "Hi", event["message"])
	assert.Equal(t, float64(3000), event["duration"])
}

func TestSnapshotReflectsStateAtConnectTime(t *testing.T) {
	srv, mirror := startTestServer(t, 2)
	require.NoError(t, mirror.SetChatMessage("user", "before connect"))

	conn := dialDisplay(t, srv)
	first := readEvent(t, conn)
	require.Equal(t, "full_state", first["type"])

	messages := first["data"].(map[string]interface{})["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "before connect", msg["content"])
}

func TestMaxClientsRejectsExtraSession(t *testing.T) {
	srv, mirror := startTestServer(t, 1)

	conn := dialDisplay(t, srv)
	first := readEvent(t, conn)
	require.Equal(t, "full_state", first["type"])

	// The second session upgrades but is rejected and closed.
	extra, _, err := websocket.DefaultDialer.Dial("ws://"+testAddr(t, srv)+"/ws/display", nil)
	require.NoError(t, err)
	defer extra.Close()
	require.NoError(t, extra.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = extra.ReadMessage()
	assert.Error(t, err)

	// The first session's stream is unaffected.
	require.NoError(t, mirror.SetStatus("Speaking"))
	event := readEvent(t, conn)
	assert.Equal(t, "state_update", event["type"])
	assert.Equal(t, "Speaking", event["value"])
}

func TestMalformedInboundFrameKeepsSessionOpen(t *testing.T) {
	srv, mirror := startTestServer(t, 2)
	conn := dialDisplay(t, srv)
	readEvent(t, conn) // full_state

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"get_state"}`)))

	// The session still receives subsequent events.
	require.NoError(t, mirror.SetStatus("Listening"))
	event := readEvent(t, conn)
	assert.Equal(t, "Listening", event["value"])
}

func TestClientCloseRemovesSession(t *testing.T) {
	srv, _ := startTestServer(t, 2)
	conn := dialDisplay(t, srv)
	readEvent(t, conn) // full_state

	require.NoError(t, conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool {
		return srv.hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartPortInUse(t *testing.T) {
	srv, _ := startTestServer(t, 2)

	_, portStr, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := &config.Config{Port: port, MaxClients: 2}
	other := NewServer(cfg, NewHub(2), func() []byte { return nil })
	assert.Error(t, other.Start())
}
