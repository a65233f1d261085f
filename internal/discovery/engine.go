package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muldr/camscan/internal/credentials"
	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/logging"
	"github.com/muldr/camscan/internal/metadata"
	"github.com/muldr/camscan/internal/protocol"
	"github.com/muldr/camscan/internal/soap"
)

// ErrSessionActive is returned by Start while a session is running.
var ErrSessionActive = errors.New("discovery session already active")

// State is the discovery engine lifecycle state.
type State int

const (
	// StateIdle means no session is running.
	StateIdle State = iota
	// StateStarting means the socket is being set up and the probe sent.
	StateStarting
	// StateListening means the engine is collecting probe matches.
	StateListening
	// StateFinishing means the listen window closed and the socket is
	// being torn down.
	StateFinishing
	// StateFailed means the last session ended with a fatal error,
	// during setup or mid-listen. A new Start is allowed from this state.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateFinishing:
		return "finishing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine runs WS-Discovery probe sessions. One probe is sent per session,
// to the subnet broadcast address when one can be derived and to the
// multicast group otherwise; every unique responder gets its own metadata
// pipeline goroutine
// whose result arrives through the EventSink. At most one session runs at
// a time.
type Engine struct {
	cfg       Config
	creds     *credentials.Store
	fetcher   *metadata.Fetcher
	sink      EventSink
	templater *soap.Templater
	logger    *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewEngine returns an idle engine. A nil sink discards events.
func NewEngine(cfg Config, creds *credentials.Store, fetcher *metadata.Fetcher, sink EventSink) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		cfg:       cfg,
		creds:     creds,
		fetcher:   fetcher,
		sink:      sink,
		templater: soap.NewTemplater(),
		logger:    logging.GetLogger().Named("discovery"),
	}
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start opens the UDP socket, sends one probe, and begins listening in a
// background goroutine. It returns ErrSessionActive if a session is
// already running. Setup failures move the engine to StateFailed and emit
// SearchFailed; a later Start may try again.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle && e.state != StateFailed {
		e.mu.Unlock()
		return ErrSessionActive
	}
	e.state = StateStarting
	e.mu.Unlock()

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return e.fail(fmt.Errorf("opening discovery socket: %w", err))
	}

	if err := e.sendProbe(conn); err != nil {
		conn.Close()
		return e.fail(err)
	}

	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.state = StateListening
	e.cancel = cancel
	e.mu.Unlock()

	e.sink.SearchStarted()
	go e.listen(ctx, conn)
	return nil
}

// Stop ends the listen window early. Metadata pipelines already dispatched
// keep running; their outcomes still reach the sink.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// fail moves the session to Failed and reports the error through the sink.
func (e *Engine) fail(err error) error {
	e.mu.Lock()
	e.state = StateFailed
	e.cancel = nil
	e.mu.Unlock()
	e.logger.Error("discovery session failed", zap.Error(err))
	e.sink.SearchFailed(err)
	return err
}

// sendProbe sends one WS-Discovery probe to the resolved destination. If
// the subnet broadcast send is refused the standard multicast group gets
// one more try.
func (e *Engine) sendProbe(conn net.PacketConn) error {
	body, err := e.templater.Render(soap.TemplateProbe, uuid.NewString())
	if err != nil {
		return fmt.Errorf("rendering probe: %w", err)
	}

	host := e.probeAddress()
	err = e.writeProbe(conn, body, host)
	if err == nil || host == e.cfg.MulticastAddress {
		return err
	}
	e.logger.Warn("broadcast probe refused, trying multicast group",
		zap.String("dest", host), zap.Error(err))
	return e.writeProbe(conn, body, e.cfg.MulticastAddress)
}

// probeAddress picks the probe destination host. Cameras that never join
// the WS-Discovery group still hear a subnet broadcast, so the local
// broadcast address is preferred; the group is used when no suitable
// interface exists. A configured address other than the standard group is
// an explicit override and always wins.
func (e *Engine) probeAddress() string {
	if e.cfg.MulticastAddress != DefaultMulticastAddress {
		return e.cfg.MulticastAddress
	}
	bcast, err := BroadcastAddress()
	if err != nil {
		e.logger.Debug("no subnet broadcast address, using multicast group", zap.Error(err))
		return e.cfg.MulticastAddress
	}
	return bcast
}

func (e *Engine) writeProbe(conn net.PacketConn, body, host string) error {
	dest := net.JoinHostPort(host, fmt.Sprint(e.cfg.Port))
	addr, err := net.ResolveUDPAddr("udp4", dest)
	if err != nil {
		return fmt.Errorf("resolving probe destination %s: %w", dest, err)
	}
	if _, err := conn.WriteTo([]byte(body), addr); err != nil {
		return fmt.Errorf("sending probe to %s: %w", dest, err)
	}
	e.logger.Debug("probe sent", zap.String("dest", dest), zap.Int("bytes", len(body)))
	return nil
}

// listen collects probe matches until the timeout elapses or ctx is
// canceled, dispatching one pipeline goroutine per unique responder.
// A non-timeout socket error ends the session as a failure instead of a
// clean finish.
func (e *Engine) listen(ctx context.Context, conn net.PacketConn) {
	defer conn.Close()

	var (
		buf      = make([]byte, maxDatagramSize)
		deadline = time.Now().Add(e.cfg.Timeout)
		seen     = make(map[string]bool)
	)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		now := time.Now()
		if !now.Before(deadline) {
			break
		}

		slice := now.Add(readSlice)
		if slice.After(deadline) {
			slice = deadline
		}
		_ = conn.SetReadDeadline(slice)

		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			// A dead socket is fatal for the session. Pipelines already
			// dispatched keep running and still report their outcomes.
			e.fail(fmt.Errorf("reading probe matches: %w", err))
			return
		}

		raw := string(buf[:n])
		logging.LogRawBytes("probe match datagram", buf[:n])

		dev, err := protocol.ParseProbeMatch(raw)
		if err != nil {
			e.logger.Debug("unparsable probe match",
				zap.String("from", from.String()), zap.Error(err))
			continue
		}
		if dev.ServiceURL == "" || dev.Address == "" {
			e.logger.Debug("probe match without service URL",
				zap.String("from", from.String()))
			continue
		}

		key := dev.UUID
		if key == "" {
			key = dev.Address
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		e.dispatch(dev)
	}

	e.mu.Lock()
	e.state = StateFinishing
	e.cancel = nil
	e.mu.Unlock()

	e.logger.Info("discovery window closed", zap.Int("responders", len(seen)))
	e.sink.SearchFinished(len(seen))

	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()
}

// dispatch resolves credentials and starts the device's metadata pipeline.
// The pipeline runs on a background context: stopping the listen window
// must not abort enrichment already underway.
func (e *Engine) dispatch(dev *device.Device) {
	account := e.creds.Lookup(dev.Manufacturer)
	dev.SetCredentials(account.Username, account.Password)

	e.logger.Info("device responded",
		zap.String("address", dev.Address),
		zap.String("manufacturer", dev.Manufacturer))

	go func() {
		if err := e.fetcher.Fetch(context.Background(), dev); err != nil {
			e.sink.DeviceFailed(dev, err)
			return
		}
		e.sink.DeviceFound(dev)
	}()
}
