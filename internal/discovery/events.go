package discovery

import (
	"github.com/muldr/camscan/internal/device"
)

// EventSink receives discovery session callbacks. Session lifecycle events
// (SearchStarted, SearchFinished, SearchFailed) come from the listen
// goroutine; per-device events come from that device's pipeline goroutine,
// so implementations must be safe for concurrent use.
type EventSink interface {
	// SearchStarted fires after the probe has been sent and the engine
	// is listening for responses.
	SearchStarted()

	// DeviceFound fires once per device whose metadata pipeline completed.
	DeviceFound(dev *device.Device)

	// DeviceFailed fires once per device whose metadata pipeline failed.
	// The device still carries whatever fields earlier steps filled in.
	DeviceFailed(dev *device.Device, err error)

	// SearchFinished fires when the listen window closes. responders is
	// the number of unique devices that answered the probe; their
	// pipelines may still be running.
	SearchFinished(responders int)

	// SearchFailed fires when the session could not be set up.
	SearchFailed(err error)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) SearchStarted()                     {}
func (NopSink) DeviceFound(*device.Device)         {}
func (NopSink) DeviceFailed(*device.Device, error) {}
func (NopSink) SearchFinished(int)                 {}
func (NopSink) SearchFailed(error)                 {}

// MultiSink fans each event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) SearchStarted() {
	for _, s := range m {
		s.SearchStarted()
	}
}

func (m MultiSink) DeviceFound(dev *device.Device) {
	for _, s := range m {
		s.DeviceFound(dev)
	}
}

func (m MultiSink) DeviceFailed(dev *device.Device, err error) {
	for _, s := range m {
		s.DeviceFailed(dev, err)
	}
}

func (m MultiSink) SearchFinished(responders int) {
	for _, s := range m {
		s.SearchFinished(responders)
	}
}

func (m MultiSink) SearchFailed(err error) {
	for _, s := range m {
		s.SearchFailed(err)
	}
}
