// Package signal relays WebRTC signaling messages between two browser peers.
//
// The first peer to connect is told to wait. When the second connects, the
// first is told to init (create the offer) and the second to wait for it.
// Further connections are refused until a slot frees up.
package signal

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxPeers is the room size.
	MaxPeers = 2

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
	maxMessage = 64 * 1024
)

// Message types sent by the relay itself.
const (
	TypeWait  = "wait"
	TypeInit  = "init"
	TypeError = "error"
)

// Message is the envelope of every signaling message. Fields other than
// Type and SDP are forwarded untouched.
type Message struct {
	Type    string `json:"type"`
	SDP     string `json:"sdp,omitempty"`
	Message string `json:"message,omitempty"`
}

// Relay is an http.Handler serving the two-peer signaling room.
type Relay struct {
	mu       sync.Mutex
	peers    []*peer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type peer struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool // guarded by Relay.mu
}

// NewRelay creates an empty signaling room.
func NewRelay(logger *slog.Logger) *Relay {
	return &Relay{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "signal_relay"),
	}
}

// Peers returns the number of connected peers.
func (r *Relay) Peers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		r.logger.WarnContext(req.Context(), "websocket upgrade failed", "error", err)
		return
	}

	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}
	if !r.join(p) {
		r.logger.InfoContext(req.Context(), "room is full, refusing peer", "remote", req.RemoteAddr)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room is full"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	r.logger.InfoContext(req.Context(), "peer connected", "remote", req.RemoteAddr)

	go r.writePump(p)
	r.readPump(p)
}

// join adds p to the room and sends the role messages.
func (r *Relay) join(p *peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.peers) >= MaxPeers {
		return false
	}
	r.peers = append(r.peers, p)

	if len(r.peers) == 1 {
		r.enqueue(p, control(TypeWait, ""))
		return true
	}
	r.enqueue(r.peers[0], control(TypeInit, ""))
	r.enqueue(p, control(TypeWait, ""))
	return true
}

func (r *Relay) leave(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, candidate := range r.peers {
		if candidate == p {
			r.peers = append(r.peers[:i], r.peers[i+1:]...)
			break
		}
	}
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// forward sends data to every peer except the sender.
func (r *Relay) forward(sender *peer, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.peers {
		if p != sender {
			r.enqueue(p, data)
		}
	}
}

// reply sends data back to the sender only.
func (r *Relay) reply(p *peer, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueue(p, data)
}

// enqueue must be called with r.mu held.
func (r *Relay) enqueue(p *peer, data []byte) {
	if p.closed {
		return
	}
	select {
	case p.send <- data:
	default:
		r.logger.Warn("peer send buffer full, dropping message")
	}
}

func (r *Relay) readPump(p *peer) {
	defer func() {
		r.leave(p)
		r.logger.Info("peer disconnected")
	}()

	p.conn.SetReadLimit(maxMessage)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn("peer read failed", "error", err)
			}
			return
		}

		if err := Validate(data); err != nil {
			r.reply(p, control(TypeError, err.Error()))
			continue
		}
		r.forward(p, data)
	}
}

func (r *Relay) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func control(typ, message string) []byte {
	data, _ := json.Marshal(Message{Type: typ, Message: message})
	return data
}
