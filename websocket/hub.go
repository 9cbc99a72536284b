package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// BookingEvent is pushed to a booking participant when the other party
// creates or transitions a booking.
type BookingEvent struct {
	RecipientID uuid.UUID `json:"-"`
	BookingID   uuid.UUID `json:"booking_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *BookingEvent, 16)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			conn, ok := clients[event.RecipientID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error sending event to client %s: %v", event.RecipientID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, event.RecipientID)
				clientsMu.Unlock()
			}
		}
	}
}

// NotifyBookingEvent queues a booking event without blocking the request
// path; events for users with no open connection are dropped by the hub.
func NotifyBookingEvent(recipientID, bookingID uuid.UUID, status, message string) {
	event := &BookingEvent{
		RecipientID: recipientID,
		BookingID:   bookingID,
		Status:      status,
		Message:     message,
		OccurredAt:  time.Now(),
	}
	select {
	case Broadcast <- event:
	default:
		log.Printf("Dropping booking event for %s: hub queue full", recipientID)
	}
}
