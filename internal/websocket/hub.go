package websocket

import "github.com/rs/zerolog/log"

type topicMessage struct {
	topic  string  // empty means every client
	client *Client // set for a reply to a single client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages, optionally limited to one topic.
	broadcast chan topicMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan topicMessage, 256),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[string]map[*Client]bool)
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client, client.Topic)
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.broadcast:
			if msg.client != nil {
				if h.clients[msg.client] {
					select {
					case msg.client.Send <- msg.data:
					default:
						h.drop(msg.client)
					}
				}
				continue
			}
			targets := h.clients
			if msg.topic != "" {
				targets = h.subscriptions[msg.topic]
			}
			for client := range targets {
				select {
				case client.Send <- msg.data:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues a message for every client subscribed to topic. An empty
// topic reaches everyone. When the queue is full the message is dropped;
// the live feed is best effort.
func (h *Hub) Publish(topic, action string, payload interface{}) {
	select {
	case h.broadcast <- topicMessage{topic: topic, data: encode(action, payload)}:
	default:
		log.Warn().Str("action", action).Msg("Websocket broadcast queue full, dropping message")
	}
}

// Reply queues data for a single client. It is dropped if the client has
// already gone away.
func (h *Hub) Reply(client *Client, data []byte) {
	select {
	case h.broadcast <- topicMessage{client: client, data: data}:
	default:
		log.Warn().Msg("Websocket broadcast queue full, dropping reply")
	}
}

// Join registers client unless the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client. It is a no-op once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if topic == "" {
		return
	}
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}
