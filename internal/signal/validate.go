package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

var (
	// ErrMalformedMessage is returned for payloads that are not a JSON object with a type.
	ErrMalformedMessage = errors.New("malformed signaling message")

	// ErrInvalidSDP is returned when an offer or answer carries an unparsable session description.
	ErrInvalidSDP = errors.New("invalid session description")
)

// Validate checks a signaling payload before it is forwarded. Offers and
// answers must carry an SDP that parses as a WebRTC session description.
// Other message types, such as ICE candidates, are forwarded as is.
func Validate(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return ErrMalformedMessage
	}

	sdpType := webrtc.NewSDPType(msg.Type)
	if sdpType != webrtc.SDPTypeOffer && sdpType != webrtc.SDPTypeAnswer {
		return nil
	}

	desc := webrtc.SessionDescription{Type: sdpType, SDP: msg.SDP}
	if msg.SDP == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidSDP, msg.Type)
	}
	if _, err := desc.Unmarshal(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSDP, err)
	}
	return nil
}
