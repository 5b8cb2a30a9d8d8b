package signal

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSDP = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

func newTestRelay(t *testing.T) (*Relay, string) {
	t.Helper()
	relay := NewRelay(slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := httptest.NewServer(relay)
	t.Cleanup(server.Close)
	return relay, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestRelay_AssignsRoles(t *testing.T) {
	t.Parallel()
	_, url := newTestRelay(t)

	first := dial(t, url)
	assert.Equal(t, TypeWait, readMessage(t, first).Type)

	second := dial(t, url)
	assert.Equal(t, TypeInit, readMessage(t, first).Type)
	assert.Equal(t, TypeWait, readMessage(t, second).Type)
}

func TestRelay_RefusesThirdPeer(t *testing.T) {
	t.Parallel()
	relay, url := newTestRelay(t)

	first := dial(t, url)
	readMessage(t, first)
	second := dial(t, url)
	readMessage(t, second)

	third := dial(t, url)
	require.NoError(t, third.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := third.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Equal(t, MaxPeers, relay.Peers())
}

func TestRelay_ForwardsToOtherPeer(t *testing.T) {
	t.Parallel()
	_, url := newTestRelay(t)

	first := dial(t, url)
	readMessage(t, first)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)

	require.NoError(t, first.WriteJSON(Message{Type: "offer", SDP: validSDP}))
	got := readMessage(t, second)
	assert.Equal(t, "offer", got.Type)
	assert.Equal(t, validSDP, got.SDP)

	require.NoError(t, second.WriteMessage(websocket.TextMessage, []byte(`{"type":"candidate","candidate":{"sdpMid":"0"}}`)))
	assert.Equal(t, "candidate", readMessage(t, first).Type)
}

func TestRelay_RejectsInvalidSDP(t *testing.T) {
	t.Parallel()
	_, url := newTestRelay(t)

	first := dial(t, url)
	readMessage(t, first)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)

	require.NoError(t, first.WriteJSON(Message{Type: "answer", SDP: "not an sdp"}))
	assert.Equal(t, TypeError, readMessage(t, first).Type)

	// The peer received nothing; the next valid message is the first it sees.
	require.NoError(t, first.WriteJSON(Message{Type: "answer", SDP: validSDP}))
	assert.Equal(t, "answer", readMessage(t, second).Type)
}

func TestRelay_FreesSlotOnDisconnect(t *testing.T) {
	t.Parallel()
	relay, url := newTestRelay(t)

	first := dial(t, url)
	readMessage(t, first)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)

	require.NoError(t, second.Close())
	require.Eventually(t, func() bool { return relay.Peers() == 1 }, 5*time.Second, 10*time.Millisecond)

	third := dial(t, url)
	assert.Equal(t, TypeInit, readMessage(t, first).Type)
	assert.Equal(t, TypeWait, readMessage(t, third).Type)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"valid offer", `{"type":"offer","sdp":"` + strings.ReplaceAll(validSDP, "\r\n", `\r\n`) + `"}`, nil},
		{"candidate passes", `{"type":"candidate","candidate":{}}`, nil},
		{"not json", `hello`, ErrMalformedMessage},
		{"missing type", `{"sdp":"x"}`, ErrMalformedMessage},
		{"empty sdp", `{"type":"offer"}`, ErrInvalidSDP},
		{"garbage sdp", `{"type":"answer","sdp":"garbage"}`, ErrInvalidSDP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.payload))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
