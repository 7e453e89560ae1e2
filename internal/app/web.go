package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gps_fix/internal/config"
	"github.com/relabs-tech/gps_fix/internal/gps"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// positionHub caches the latest report and fans new ones out to websocket
// clients.
type positionHub struct {
	mu      sync.RWMutex
	last    gps.Report
	have    bool
	clients map[*websocket.Conn]chan gps.Report
}

func newPositionHub() *positionHub {
	return &positionHub{clients: make(map[*websocket.Conn]chan gps.Report)}
}

func (h *positionHub) publish(r gps.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = r
	h.have = true
	for _, ch := range h.clients {
		select {
		case ch <- r:
		default:
			// slow client, drop this one
		}
	}
}

func (h *positionHub) latest() (gps.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *positionHub) handleAPI(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest()
	if !ok {
		http.Error(w, "no fix yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (h *positionHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := make(chan gps.Report, 8)
	h.mu.Lock()
	h.clients[conn] = ch
	last, have := h.last, h.have
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	if have {
		if err := conn.WriteJSON(last); err != nil {
			return
		}
	}

	// Reader goroutine only notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case rep := <-ch:
			if err := conn.WriteJSON(rep); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func (h *positionHub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/position", h.handleAPI)
	mux.HandleFunc("/ws/position", h.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

func RunWeb() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}
	hub := newPositionHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the position topic and keep the latest report
	token := client.Subscribe(cfg.TopicGPSPosition, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r gps.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("web: MQTT payload unmarshal error: %v", err)
			return
		}
		hub.publish(r)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicGPSPosition)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes())
}
