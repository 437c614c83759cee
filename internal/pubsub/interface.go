package pubsub

// PubSubClient publishes domain events and decodes incoming push payloads.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
