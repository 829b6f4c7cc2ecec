package signal

// Handler consumes one inbound signaling message from a subscribed topic.
type Handler func(Message)

// Transport is the duplex pub/sub channel to the signaling server. The
// concrete implementation is Client; tests substitute an in-process fake.
type Transport interface {
	// Publish sends a message to an application destination. While the
	// transport is disconnected the message is queued and retried on the
	// next reconnect; Publish itself does not fail for that.
	Publish(destination string, msg Message) error

	// Subscribe registers fn for a topic. Subscribing twice to the same
	// topic replaces the handler in place; the server-side subscription
	// is never duplicated.
	Subscribe(topic string, fn Handler)

	// Unsubscribe removes the topic subscription, if any.
	Unsubscribe(topic string)

	// OnReconnect registers a callback fired after every successful
	// reconnect, once subscriptions have been replayed.
	OnReconnect(fn func())

	// Connected reports whether the underlying connection is up.
	Connected() bool

	Close() error
}
