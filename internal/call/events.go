package call

// MediaStatus describes a remote participant's audio/video/screen state
// change; it affects only UI indicators, never local playback.
type MediaStatus struct {
	ChatID     string
	CallID     string
	SenderID   string
	StatusType string
	Enabled    bool
}

// Events are the UI-facing callbacks. Every field is optional; nil
// callbacks are skipped. Callbacks run outside the coordinator's lock, so
// they may call back into the Coordinator (e.g. Accept from inside
// OnIncomingCall).
type Events struct {
	// OnIncomingCall fires when a remote notification creates a receiver
	// session. Never fires for self-originated notifications.
	OnIncomingCall func(s *Session)

	// OnCallEstablished fires once, when the first remote track arrives.
	OnCallEstablished func()

	// OnCallEnded fires exactly once per session, on any teardown path.
	OnCallEnded func()

	// OnLocalStream fires when local capture succeeds.
	OnLocalStream func(m LocalMedia)

	OnRemoteStreamAdded   func(participantID string)
	OnRemoteStreamRemoved func(participantID string)

	// OnRemoteMediaStatus relays MEDIA_STATUS / SCREEN_SHARE_* indicators.
	OnRemoteMediaStatus func(ms MediaStatus)

	// OnBusy fires when a call cannot proceed because a session is already
	// live, or the server reports the recipient busy. OnBusyCleared fires
	// after the auto-dismiss interval.
	OnBusy        func(chatID string)
	OnBusyCleared func()

	// OnError reports call-fatal failures (media denied, malformed SDP,
	// connection failure). Teardown has already happened when it fires.
	OnError func(err error)
}
