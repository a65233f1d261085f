package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/logging"
)

// Event is one discovery event on the wire, serialized as JSON.
type Event struct {
	Type       string         `json:"type"` // search_started, device_found, device_failed, search_finished, search_failed
	Time       time.Time      `json:"time"`
	Device     *DeviceSummary `json:"device,omitempty"`
	Error      string         `json:"error,omitempty"`
	Responders int            `json:"responders,omitempty"`
}

// DeviceSummary is the subscriber-facing view of a discovered camera.
type DeviceSummary struct {
	Address      string   `json:"address"`
	UUID         string   `json:"uuid,omitempty"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	Serial       string   `json:"serial,omitempty"`
	Firmware     string   `json:"firmware,omitempty"`
	Streams      []string `json:"streams,omitempty"`
}

func summarize(dev *device.Device) *DeviceSummary {
	summary := &DeviceSummary{
		Address:      dev.Address,
		UUID:         dev.UUID,
		Manufacturer: dev.Manufacturer,
		Model:        dev.Model,
		Serial:       dev.SerialNumber,
		Firmware:     dev.FirmwareVersion,
	}
	for _, profile := range dev.Profiles {
		if profile.StreamURI != "" {
			summary.Streams = append(summary.Streams, profile.StreamURI)
		}
	}
	return summary
}

// Hub fans discovery events out to every connected WebSocket subscriber.
// It implements discovery.EventSink, so it can be handed to the engine
// directly (or combined with other sinks via MultiSink).
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *zap.Logger
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]bool),
		logger: logging.GetLogger().Named("hub"),
	}
}

// add registers a subscriber connection.
func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("subscriber connected",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("subscribers", count))
}

// remove drops a subscriber connection.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends event to every subscriber, dropping connections whose
// writes fail.
func (h *Hub) broadcast(event Event) {
	event.Time = time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping subscriber",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.Error(err))
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// SearchStarted implements discovery.EventSink.
func (h *Hub) SearchStarted() {
	h.broadcast(Event{Type: "search_started"})
}

// DeviceFound implements discovery.EventSink.
func (h *Hub) DeviceFound(dev *device.Device) {
	h.broadcast(Event{Type: "device_found", Device: summarize(dev)})
}

// DeviceFailed implements discovery.EventSink.
func (h *Hub) DeviceFailed(dev *device.Device, err error) {
	h.broadcast(Event{Type: "device_failed", Device: summarize(dev), Error: err.Error()})
}

// SearchFinished implements discovery.EventSink.
func (h *Hub) SearchFinished(responders int) {
	h.broadcast(Event{Type: "search_finished", Responders: responders})
}

// SearchFailed implements discovery.EventSink.
func (h *Hub) SearchFailed(err error) {
	h.broadcast(Event{Type: "search_failed", Error: err.Error()})
}
