package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/sightseer/internal/adapters/nats"
	"github.com/samirrijal/sightseer/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to route events.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Route  string `json:"route"`  // route id; "" means every route
}

// routeFilter tracks which routes a client follows. A new client follows
// every route until it subscribes to a specific one.
type routeFilter struct {
	mu     sync.RWMutex
	all    bool
	routes map[string]struct{}
}

func newRouteFilter() *routeFilter {
	return &routeFilter{all: true, routes: make(map[string]struct{})}
}

func (f *routeFilter) add(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = false
	if _, ok := f.routes[id]; ok {
		return false
	}
	f.routes[id] = struct{}{}
	return true
}

func (f *routeFilter) remove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routes[id]; !ok {
		return false
	}
	delete(f.routes, id)
	return true
}

// setAll switches between following every route and following none.
// Per-route subscriptions are dropped either way.
func (f *routeFilter) setAll(all bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.all != all
	f.all = all
	f.routes = make(map[string]struct{})
	return changed
}

func (f *routeFilter) match(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.all {
		return true
	}
	_, ok := f.routes[id]
	return ok
}

// handle applies a client message and returns the reply to send.
func (f *routeFilter) handle(m wsMessage) map[string]string {
	if m.Route != "" && !validUUID(m.Route) {
		return map[string]string{"error": "route must be a UUID"}
	}
	switch m.Action {
	case "subscribe":
		if m.Route == "" {
			f.setAll(true)
			return map[string]string{"status": "subscribed", "route": "*"}
		}
		if !f.add(m.Route) {
			return map[string]string{"status": "already subscribed", "route": m.Route}
		}
		return map[string]string{"status": "subscribed", "route": m.Route}
	case "unsubscribe":
		if m.Route == "" {
			if !f.setAll(false) {
				return map[string]string{"error": "not subscribed to every route"}
			}
			return map[string]string{"status": "unsubscribed", "route": "*"}
		}
		if !f.remove(m.Route) {
			return map[string]string{"error": "not subscribed to " + m.Route}
		}
		return map[string]string{"status": "unsubscribed", "route": m.Route}
	default:
		return map[string]string{"error": "unknown action: " + m.Action}
	}
}

// WebSocketHandler returns a handler that relays route events from NATS to
// connected clients. Every route event is relayed until the client sends
// {"action":"subscribe","route":"<id>"} to narrow the feed.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote_addr", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event feed unavailable"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Debug("ws client connected")

		filter := newRouteFilter()
		sub, err := nc.Subscribe(natsadapter.RouteSubjects, func(msg *nats.Msg) {
			ev, err := natsadapter.DecodeRouteEvent(msg.Subject, msg.Data)
			if err != nil || !filter.match(ev.RouteID) {
				return
			}
			_ = writeJSON(ev)
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			_ = writeJSON(filter.handle(m))
		}

		log.Debug("ws client disconnected")
	}
}
