package signal

import (
	"encoding/json"
	"errors"
	"testing"
)

const sampleSDP = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\n"

func TestExtractSDPPriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "top-level sdp",
			msg:  Message{SDP: "top"},
			want: "top",
		},
		{
			name: "payload sdp",
			msg:  Message{Payload: &Payload{SDP: "nested"}},
			want: "nested",
		},
		{
			name: "top-level offer",
			msg:  Message{Offer: "offer"},
			want: "offer",
		},
		{
			name: "payload offer",
			msg:  Message{Payload: &Payload{Offer: "nested-offer"}},
			want: "nested-offer",
		},
		{
			name: "raw string payload",
			msg:  Message{Payload: &Payload{RawSDP: sampleSDP}},
			want: sampleSDP,
		},
		{
			name: "top-level sdp wins over payload",
			msg:  Message{SDP: "top", Payload: &Payload{SDP: "nested", Offer: "o"}},
			want: "top",
		},
		{
			name: "payload sdp wins over offer",
			msg:  Message{Offer: "offer", Payload: &Payload{SDP: "nested"}},
			want: "nested",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractSDP(tc.msg)
			if err != nil {
				t.Fatalf("ExtractSDP: %v", err)
			}
			if got != tc.want {
				t.Errorf("ExtractSDP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractSDPMissing(t *testing.T) {
	_, err := ExtractSDP(Message{Type: MsgOffer, ChatID: "7"})
	if !errors.Is(err, ErrNoSDP) {
		t.Fatalf("err = %v, want ErrNoSDP", err)
	}

	// A raw payload string that is not a session description is rejected.
	_, err = ExtractSDP(Message{Payload: &Payload{RawSDP: "not an sdp"}})
	if !errors.Is(err, ErrNoSDP) {
		t.Fatalf("err = %v, want ErrNoSDP for non-SDP raw payload", err)
	}
}

func TestPayloadUnmarshalRawString(t *testing.T) {
	raw, err := json.Marshal(sampleSDP)
	if err != nil {
		t.Fatal(err)
	}

	var msg Message
	if err := json.Unmarshal([]byte(`{"type":"OFFER","payload":`+string(raw)+`}`), &msg); err != nil {
		t.Fatalf("unmarshal raw-string payload: %v", err)
	}
	got, err := ExtractSDP(msg)
	if err != nil {
		t.Fatalf("ExtractSDP: %v", err)
	}
	if got != sampleSDP {
		t.Errorf("ExtractSDP = %q, want sample SDP", got)
	}
}

func TestPayloadUnmarshalObject(t *testing.T) {
	var msg Message
	data := `{"type":"OFFER","chatId":"7","payload":{"sdp":"v=0","offer":"x"}}`
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		t.Fatalf("unmarshal object payload: %v", err)
	}
	if msg.Payload == nil || msg.Payload.SDP != "v=0" || msg.Payload.Offer != "x" {
		t.Fatalf("payload = %+v, want sdp and offer populated", msg.Payload)
	}
}

func TestTopicNames(t *testing.T) {
	if got := ChatTopic("7"); got != "/topic/chat/7" {
		t.Errorf("ChatTopic = %q", got)
	}
	if got := UserQueue("u1"); got != "/user/u1/queue/call" {
		t.Errorf("UserQueue = %q", got)
	}
}
