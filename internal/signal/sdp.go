package signal

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoSDP is returned when none of the tolerated payload locations carry a
// session description.
var ErrNoSDP = errors.New("signal: no SDP found in message")

// sdpVersionToken starts every well-formed session description.
const sdpVersionToken = "v=0"

// UnmarshalJSON accepts both the structured payload object and the raw-string
// form used by group-call notifications, where the payload is the SDP itself.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		p.RawSDP = raw
		return nil
	}

	// Alias avoids recursing into this method.
	type alias Payload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Payload(a)
	return nil
}

// ExtractSDP locates the session description in a signaling message. The
// server is inconsistent about where it puts the SDP, so each known location
// is probed in fixed priority order:
//
//  1. msg.sdp
//  2. msg.payload.sdp
//  3. msg.offer
//  4. msg.payload.offer
//  5. msg.payload as a raw string starting with "v=0"
//
// Returns ErrNoSDP when every location is empty.
func ExtractSDP(msg Message) (string, error) {
	if msg.SDP != "" {
		return msg.SDP, nil
	}
	if msg.Payload != nil && msg.Payload.SDP != "" {
		return msg.Payload.SDP, nil
	}
	if msg.Offer != "" {
		return msg.Offer, nil
	}
	if msg.Payload != nil && msg.Payload.Offer != "" {
		return msg.Payload.Offer, nil
	}
	if msg.Payload != nil && strings.HasPrefix(msg.Payload.RawSDP, sdpVersionToken) {
		return msg.Payload.RawSDP, nil
	}
	return "", ErrNoSDP
}
