package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spinsim/internal/spin"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server ticks a simulator at a fixed rate and publishes every signal.
type Server struct {
	sim      *spin.Simulator
	hub      *Hub
	interval time.Duration

	mu   sync.RWMutex
	last *Frame
}

func NewServer(s *spin.Simulator, frameInterval time.Duration) *Server {
	return &Server{
		sim:      s,
		hub:      NewHub(),
		interval: frameInterval,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler serves the websocket feed on /signal and the latest frame as JSON
// on /state.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/signal", s.serveSignal)
	mux.HandleFunc("/state", s.serveState)
	return mux
}

func (s *Server) serveSignal(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		klog.Warningf("broadcast: upgrade: %v", err)
		return
	}
	c := newClient(s.hub, conn)
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last == nil {
		http.Error(w, "no signal yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(last)
}

// Run drives the simulation until ctx is cancelled. The simulator is only
// touched from the ticking goroutine; signals cross to the hub through a
// non-blocking channel observer.
func (s *Server) Run(ctx context.Context) error {
	obs := spin.NewChannelObserver(sendBuffer)
	cancel := s.sim.Subscribe(obs)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.sim.Tick()
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				if n := obs.Dropped(); n > 0 {
					klog.Warningf("broadcast: %d signals dropped before publishing", n)
				}
				return nil
			case sig := <-obs.C:
				f := NewFrame(sig)
				s.mu.Lock()
				s.last = &f
				s.mu.Unlock()
				if !s.hub.Broadcast(sig) {
					return nil
				}
			}
		}
	})
	return g.Wait()
}
