package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mossy-p/peer-matchmaking/internal/matchmaking"
	"github.com/mossy-p/peer-matchmaking/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// Client represents a WebSocket client connection
type Client struct {
	ID   string
	Conn *websocket.Conn
	send chan []byte
}

// HandleSignaling returns the WebSocket endpoint clients use to search
// for a partner. Each connection gets one session for its lifetime.
func HandleSignaling(coord *matchmaking.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := &Client{
			ID:   uuid.New().String(),
			Conn: conn,
			send: make(chan []byte, 256),
		}

		coord.Connect(client.ID, client)
		log.Printf("Session %s connected", client.ID)

		go client.writePump()
		go client.readPump(coord)
	}
}

// Send queues an event for delivery, dropping it when the client's
// buffer is full. Implements matchmaking.Conn.
func (c *Client) Send(event models.ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event for session %s: %v", c.ID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("Failed to send event to session %s, buffer full", c.ID)
	}
}

func (c *Client) readPump(coord *matchmaking.Coordinator) {
	defer func() {
		coord.Disconnect(c.ID)
		c.Conn.Close()
		log.Printf("Session %s disconnected", c.ID)
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var event models.ClientEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("Failed to parse event from session %s: %v", c.ID, err)
			continue
		}

		switch event.Type {
		case models.EventFindConnection:
			// A malformed payload (e.g. filters that are not a list)
			// is rejected here, before any queue state is touched.
			var req models.FindConnectionRequest
			if err := json.Unmarshal(event.Payload, &req); err != nil {
				log.Printf("Invalid find request from session %s: %v", c.ID, err)
				continue
			}
			coord.Find(c.ID, req.PeerID, req.Filters)

		case models.EventStopFind:
			coord.StopFind(c.ID)

		case models.EventNotifyDisconnect:
			var req models.NotifyDisconnectRequest
			if err := json.Unmarshal(event.Payload, &req); err != nil {
				log.Printf("Invalid disconnect notice from session %s: %v", c.ID, err)
				continue
			}
			coord.NotifyRemoteDisconnect(c.ID, req.RemoteSessionID)

		default:
			log.Printf("Unknown event type: %s", event.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
