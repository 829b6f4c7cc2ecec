// Package signal defines the call signaling vocabulary and the pub/sub
// WebSocket transport that carries it. All SDP/ICE payload quirks of the
// server are absorbed here; callers deal in typed Messages only.
package signal

import (
	"github.com/pion/webrtc/v4"
)

// MessageType identifies the kind of signaling message.
type MessageType string

const (
	MsgCallNotification   MessageType = "CALL_NOTIFICATION"
	MsgCallAccepted       MessageType = "CALL_ACCEPTED"
	MsgOffer              MessageType = "OFFER"
	MsgAnswer             MessageType = "ANSWER"
	MsgICECandidate       MessageType = "ICE_CANDIDATE"
	MsgCallEnded          MessageType = "CALL_ENDED"
	MsgCallRejected       MessageType = "CALL_REJECTED"
	MsgCallBusy           MessageType = "CALL_BUSY"
	MsgMediaStatus        MessageType = "MEDIA_STATUS"
	MsgScreenShareStarted MessageType = "SCREEN_SHARE_STARTED"
	MsgScreenShareEnded   MessageType = "SCREEN_SHARE_ENDED"
)

// Media status sub-types carried by MEDIA_STATUS messages.
const (
	StatusToggleAudio = "TOGGLE_AUDIO"
	StatusToggleVideo = "TOGGLE_VIDEO"
)

// Outbound destinations, one per operation. The server routes each to the
// chat topic or the counterpart's private queue.
const (
	DestStart       = "/app/call/start"
	DestAccept      = "/app/call/accept"
	DestOffer       = "/app/call/offer"
	DestAnswer      = "/app/call/answer"
	DestCandidate   = "/app/call/ice-candidate"
	DestEnd         = "/app/call/end"
	DestReject      = "/app/call/reject"
	DestMediaStatus = "/app/call/media-status"
	DestScreenShare = "/app/call/screen-share"
)

// ChatTopic returns the room-scoped broadcast topic for a chat.
func ChatTopic(chatID string) string {
	return "/topic/chat/" + chatID
}

// UserQueue returns the per-user private queue for targeted notifications
// (CALL_NOTIFICATION, CALL_ACCEPTED, CALL_BUSY before the caller joins the
// chat topic).
func UserQueue(userID string) string {
	return "/user/" + userID + "/queue/call"
}

// Payload is the nested message body some server versions wrap the SDP in.
// RawSDP covers group-call notifications that embed the session description
// as a bare string.
type Payload struct {
	SDP    string `json:"sdp,omitempty"`
	Offer  string `json:"offer,omitempty"`
	RawSDP string `json:"-"`
}

// Message is the JSON structure exchanged over the signaling transport.
// Fields are a union across all message types; unused ones are omitted.
type Message struct {
	Type       MessageType              `json:"type"`
	ChatID     string                   `json:"chatId,omitempty"`
	CallID     string                   `json:"callId,omitempty"`
	CallType   string                   `json:"callType,omitempty"`
	SenderID   string                   `json:"senderId,omitempty"`
	SenderName string                   `json:"senderName,omitempty"`
	SDP        string                   `json:"sdp,omitempty"`
	Offer      string                   `json:"offer,omitempty"`
	Payload    *Payload                 `json:"payload,omitempty"`
	Candidate  *webrtc.ICECandidateInit `json:"candidate,omitempty"`
	StatusType string                   `json:"statusType,omitempty"`
	Enabled    bool                     `json:"enabled,omitempty"`
}
