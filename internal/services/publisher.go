package services

// Publisher pushes live events to connected websocket clients.
type Publisher interface {
	Publish(topic, action string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
