package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muldr/camscan/internal/credentials"
	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/metadata"
)

// recordingSink captures events and signals session completion.
type recordingSink struct {
	mu       sync.Mutex
	started  int
	found    []*device.Device
	failed   []*device.Device
	failErrs []error

	finished   chan int
	sessionErr chan error
	deviceDone chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		finished:   make(chan int, 1),
		sessionErr: make(chan error, 1),
		deviceDone: make(chan struct{}, 16),
	}
}

func (r *recordingSink) SearchStarted() {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recordingSink) DeviceFound(dev *device.Device) {
	r.mu.Lock()
	r.found = append(r.found, dev)
	r.mu.Unlock()
	r.deviceDone <- struct{}{}
}

func (r *recordingSink) DeviceFailed(dev *device.Device, err error) {
	r.mu.Lock()
	r.failed = append(r.failed, dev)
	r.failErrs = append(r.failErrs, err)
	r.mu.Unlock()
	r.deviceDone <- struct{}{}
}

func (r *recordingSink) SearchFinished(responders int) {
	r.finished <- responders
}

func (r *recordingSink) SearchFailed(err error) {
	r.sessionErr <- err
}

// fakeResponder answers any UDP datagram with the configured payloads.
func fakeResponder(t *testing.T, payloads ...string) (host string, port int) {
	t.Helper()
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 8192)
		for {
			_, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			for _, p := range payloads {
				if _, err := conn.WriteTo([]byte(p), from); err != nil {
					return
				}
			}
		}
	}()

	addr := conn.LocalAddr().(*net.UDPAddr)
	return addr.IP.String(), addr.Port
}

func probeMatch(serviceURL, messageID, manufacturer string) string {
	return `<Envelope><Header>
		<MessageID>` + messageID + `</MessageID>
		</Header><Body><ProbeMatches><ProbeMatch>
		<Scopes>onvif://www.onvif.org/type/NetworkVideoTransmitter onvif://www.onvif.org/name/` +
		strings.ReplaceAll(manufacturer, " ", "%20") + ` onvif://www.onvif.org/hardware/X</Scopes>
		<XAddrs>` + serviceURL + `</XAddrs>
		</ProbeMatch></ProbeMatches></Body></Envelope>`
}

func testConfig(port int) Config {
	return Config{
		MulticastAddress: "127.0.0.1",
		Port:             port,
		Timeout:          700 * time.Millisecond,
	}
}

func waitFinished(t *testing.T, sink *recordingSink) int {
	t.Helper()
	select {
	case n := <-sink.finished:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return 0
	}
}

func waitDevice(t *testing.T, sink *recordingSink) {
	t.Helper()
	select {
	case <-sink.deviceDone:
	case <-time.After(5 * time.Second):
		t.Fatal("no device outcome arrived")
	}
}

func TestEngine_SessionLifecycle(t *testing.T) {
	// Responder's service URL points at a closed port, so the pipeline
	// fails but the responder is still counted and reported.
	match := probeMatch("http://127.0.0.1:1/onvif/device_service", "urn:uuid:cam-1", "Hikvision IPC")
	_, port := fakeResponder(t, match)

	sink := newRecordingSink()
	engine := NewEngine(testConfig(port), credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(time.Second)), sink)

	if got := engine.State(); got != StateIdle {
		t.Fatalf("initial state = %v, want idle", got)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// A second Start during the session is rejected.
	if err := engine.Start(context.Background()); err != ErrSessionActive {
		t.Errorf("second Start() error = %v, want ErrSessionActive", err)
	}

	responders := waitFinished(t, sink)
	if responders != 1 {
		t.Errorf("responders = %d, want 1", responders)
	}
	waitDevice(t, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.started != 1 {
		t.Errorf("SearchStarted count = %d, want 1", sink.started)
	}
	if len(sink.failed) != 1 {
		t.Fatalf("failed devices = %d, want 1", len(sink.failed))
	}
	dev := sink.failed[0]
	if dev.Address != "127.0.0.1:1" {
		t.Errorf("device address = %q", dev.Address)
	}
	if dev.Manufacturer != "Hikvision IPC" {
		t.Errorf("device manufacturer = %q", dev.Manufacturer)
	}
	if dev.UUID != "urn:uuid:cam-1" {
		t.Errorf("device UUID = %q", dev.UUID)
	}
	// Credentials resolved from the manufacturer scope before dispatch.
	if dev.Username != "admin" || dev.Password != "qwer123456" {
		t.Errorf("resolved credentials = %q/%q", dev.Username, dev.Password)
	}
	if !metadata.IsNetworkError(sink.failErrs[0]) {
		t.Errorf("failure = %v, want network error", sink.failErrs[0])
	}
}

func TestEngine_DeduplicatesByUUID(t *testing.T) {
	match := probeMatch("http://127.0.0.1:1/onvif/device_service", "urn:uuid:same", "Acme")
	// Same endpoint answering twice yields one device.
	_, port := fakeResponder(t, match, match)

	sink := newRecordingSink()
	engine := NewEngine(testConfig(port), credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(time.Second)), sink)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if responders := waitFinished(t, sink); responders != 1 {
		t.Errorf("responders = %d, want 1", responders)
	}
}

func TestEngine_SkipsUnusableResponses(t *testing.T) {
	noURL := probeMatch("", "urn:uuid:no-url", "Acme")
	garbage := "not xml at all <<<"
	good := probeMatch("http://127.0.0.1:1/onvif/device_service", "urn:uuid:good", "Acme")
	_, port := fakeResponder(t, garbage, noURL, good)

	sink := newRecordingSink()
	engine := NewEngine(testConfig(port), credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(time.Second)), sink)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if responders := waitFinished(t, sink); responders != 1 {
		t.Errorf("responders = %d, want 1 (unusable responses must be skipped)", responders)
	}
}

func TestEngine_StopEndsSessionEarly(t *testing.T) {
	_, port := fakeResponder(t) // never answers

	sink := newRecordingSink()
	cfg := testConfig(port)
	cfg.Timeout = time.Minute
	engine := NewEngine(cfg, credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(time.Second)), sink)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	start := time.Now()
	engine.Stop()
	if responders := waitFinished(t, sink); responders != 0 {
		t.Errorf("responders = %d, want 0", responders)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Stop took %v, want prompt shutdown", elapsed)
	}

	// The engine is reusable after Stop.
	deadlineOK := func() bool {
		for i := 0; i < 50; i++ {
			if engine.State() == StateIdle {
				return true
			}
			time.Sleep(10 * time.Millisecond)
		}
		return false
	}
	if !deadlineOK() {
		t.Fatalf("state = %v, want idle after Stop", engine.State())
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	engine.Stop()
	waitFinished(t, sink)
}

func TestEngine_SocketErrorFailsSession(t *testing.T) {
	_, port := fakeResponder(t) // for the restart below

	sink := newRecordingSink()
	engine := NewEngine(testConfig(port), credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(time.Second)), sink)

	// A closed socket makes the first read fail with a non-timeout error.
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	conn.Close()

	engine.listen(context.Background(), conn)

	select {
	case err := <-sink.sessionErr:
		if err == nil {
			t.Fatal("SearchFailed delivered a nil error")
		}
	default:
		t.Fatal("fatal socket error did not surface as SearchFailed")
	}
	select {
	case n := <-sink.finished:
		t.Fatalf("SearchFinished(%d) fired after a fatal socket error", n)
	default:
	}
	if got := engine.State(); got != StateFailed {
		t.Fatalf("state = %v, want failed", got)
	}

	// Failed is restartable.
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	engine.Stop()
	waitFinished(t, sink)
}

func TestProbeAddress(t *testing.T) {
	store := credentials.NewStore()
	fetcher := metadata.NewFetcher(nil)

	t.Run("explicit override wins", func(t *testing.T) {
		engine := NewEngine(testConfig(WSDiscoveryPort), store, fetcher, nil)
		if got := engine.probeAddress(); got != "127.0.0.1" {
			t.Errorf("probeAddress() = %q, want the configured override", got)
		}
	})

	t.Run("default prefers subnet broadcast", func(t *testing.T) {
		engine := NewEngine(DefaultConfig(), store, fetcher, nil)
		got := engine.probeAddress()
		bcast, err := BroadcastAddress()
		if err != nil {
			if got != DefaultMulticastAddress {
				t.Fatalf("probeAddress() = %q, want multicast group when no broadcast address exists", got)
			}
			return
		}
		if got != bcast {
			t.Errorf("probeAddress() = %q, want subnet broadcast %q", got, bcast)
		}
	})
}

func TestEngine_FullEnrichment(t *testing.T) {
	sd := newScriptedCamera(t)
	match := probeMatch(sd.serviceURL(), "urn:uuid:cam-ok", "HIKVISION")
	_, port := fakeResponder(t, match)

	sink := newRecordingSink()
	engine := NewEngine(testConfig(port), credentials.NewStore(),
		metadata.NewFetcher(metadata.NewClient(5*time.Second)), sink)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFinished(t, sink)
	waitDevice(t, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.failed) != 0 {
		t.Fatalf("device failed: %v", sink.failErrs)
	}
	if len(sink.found) != 1 {
		t.Fatalf("found devices = %d, want 1", len(sink.found))
	}
	dev := sink.found[0]
	if dev.Model != "DS-2CD2085" {
		t.Errorf("model = %q", dev.Model)
	}
	if len(dev.Profiles) != 1 || dev.Profiles[0].StreamURI == "" {
		t.Errorf("profiles = %+v", dev.Profiles)
	}
}

// scriptedCamera is an HTTP endpoint answering the metadata pipeline's
// SOAP operations with canned responses.
type scriptedCamera struct {
	srv *httptest.Server
}

func newScriptedCamera(t *testing.T) *scriptedCamera {
	t.Helper()
	sc := &scriptedCamera{}
	sc.srv = httptest.NewServer(http.HandlerFunc(sc.handle))
	t.Cleanup(sc.srv.Close)
	return sc
}

func (sc *scriptedCamera) serviceURL() string {
	return sc.srv.URL + "/onvif/device_service"
}

func (sc *scriptedCamera) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := string(raw)

	var resp string
	switch {
	case strings.Contains(body, "<GetCapabilities"):
		resp = `<Envelope><Body><Capabilities>
			<Media><XAddr>` + sc.srv.URL + `/media</XAddr></Media>
			</Capabilities></Body></Envelope>`
	case strings.Contains(body, "<GetDeviceInformation"):
		resp = `<Envelope><Body><Manufacturer>HIKVISION</Manufacturer>
			<Model>DS-2CD2085</Model><SerialNumber>SN-1</SerialNumber>
			<FirmwareVersion>V5</FirmwareVersion></Body></Envelope>`
	case strings.Contains(body, "<GetNetworkInterfaces"):
		resp = `<Envelope><Body><NetworkInterfaces token="eth0">
			<Info><MTU>1500</MTU></Info>
			</NetworkInterfaces></Body></Envelope>`
	case strings.Contains(body, "<GetProfiles"):
		resp = `<Envelope><Body>
			<Profiles token="prof0"><Name>Main</Name></Profiles>
			</Body></Envelope>`
	case strings.Contains(body, "<GetStreamUri"):
		resp = `<Envelope><Body><Uri>rtsp://cam/prof0</Uri></Body></Envelope>`
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, resp)
}
