package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/plan-systems/klog"

	"github.com/san-kum/spinsim/internal/spin"
)

// Frame is the JSON message sent per tick. Glitch is 1 - |smoothed|, the
// disorder value dashboards animate.
type Frame struct {
	spin.Signal
	Glitch float64 `json:"glitch"`
}

func NewFrame(sig spin.Signal) Frame {
	return Frame{Signal: sig, Glitch: sig.Disorder()}
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// closes every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			klog.V(1).Infof("broadcast: hub stopped")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			klog.Infof("broadcast: client connected (%d total)", n)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				klog.Infof("broadcast: client disconnected")
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
					klog.Warningf("broadcast: dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast encodes the signal and queues it for every client. It returns
// false once the hub has stopped.
func (h *Hub) Broadcast(sig spin.Signal) bool {
	payload, err := json.Marshal(NewFrame(sig))
	if err != nil {
		klog.Errorf("broadcast: encode frame: %v", err)
		return true
	}
	select {
	case h.broadcast <- payload:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
