package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muldr/camscan/internal/device"
)

// scriptedDevice plays the role of one camera: it answers each SOAP
// operation with a canned response and records the operations it saw.
type scriptedDevice struct {
	mu    sync.Mutex
	calls []string
	// failOn names an operation that answers 500 instead of its script.
	failOn string
	// status overrides the failure status when failOn matches.
	status int

	srv *httptest.Server
}

func newScriptedDevice(t *testing.T) *scriptedDevice {
	t.Helper()
	sd := &scriptedDevice{status: http.StatusInternalServerError}
	sd.srv = httptest.NewServer(http.HandlerFunc(sd.handle))
	t.Cleanup(sd.srv.Close)
	return sd
}

func (sd *scriptedDevice) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	op := operationOf(string(body))

	sd.mu.Lock()
	sd.calls = append(sd.calls, op)
	fail := sd.failOn == op
	status := sd.status
	sd.mu.Unlock()

	if fail {
		w.WriteHeader(status)
		return
	}

	resp, ok := sd.respond(op, string(body))
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, resp)
}

func operationOf(body string) string {
	for _, op := range []string{
		"GetCapabilities", "GetDeviceInformation", "GetNetworkInterfaces",
		"GetProfiles", "GetStreamUri", "GetSnapshotUri", "GetImagingSettings",
	} {
		if strings.Contains(body, "<"+op) {
			return op
		}
	}
	return "unknown"
}

func (sd *scriptedDevice) respond(op, body string) (string, bool) {
	return cannedResponse(op, body, sd.srv.URL)
}

func cannedResponse(op, body, base string) (string, bool) {
	switch op {
	case "GetCapabilities":
		return `<Envelope><Body><GetCapabilitiesResponse><Capabilities>
			<Media><XAddr>` + base + `/media</XAddr></Media>
			<Imaging><XAddr>` + base + `/imaging</XAddr></Imaging>
			</Capabilities></GetCapabilitiesResponse></Body></Envelope>`, true
	case "GetDeviceInformation":
		return `<Envelope><Body><GetDeviceInformationResponse>
			<Manufacturer>HIKVISION</Manufacturer>
			<Model>DS-2CD2085</Model>
			<SerialNumber>SN-1234</SerialNumber>
			<FirmwareVersion>V5.7.3</FirmwareVersion>
			</GetDeviceInformationResponse></Body></Envelope>`, true
	case "GetNetworkInterfaces":
		return `<Envelope><Body><GetNetworkInterfacesResponse>
			<NetworkInterfaces token="eth0">
			<Info><MTU>1500</MTU></Info>
			<IPv4><Config><Manual><PrefixLength>24</PrefixLength></Manual></Config></IPv4>
			</NetworkInterfaces>
			</GetNetworkInterfacesResponse></Body></Envelope>`, true
	case "GetProfiles":
		return `<Envelope><Body><GetProfilesResponse>
			<Profiles token="prof0"><Name>MainStream</Name>
			<VideoSourceConfiguration token="vsc0"><SourceToken>src0</SourceToken></VideoSourceConfiguration>
			<VideoEncoderConfiguration token="vec0"><Encoding>H264</Encoding>
			<Resolution><Width>1920</Width><Height>1080</Height></Resolution>
			<RateControl><FrameRateLimit>25</FrameRateLimit></RateControl>
			</VideoEncoderConfiguration>
			</Profiles>
			<Profiles token="prof1"><Name>SubStream</Name></Profiles>
			</GetProfilesResponse></Body></Envelope>`, true
	case "GetStreamUri":
		token := "prof0"
		if strings.Contains(body, "prof1") {
			token = "prof1"
		}
		return `<Envelope><Body><GetStreamUriResponse><MediaUri>
			<Uri>rtsp://device/` + token + `</Uri>
			</MediaUri></GetStreamUriResponse></Body></Envelope>`, true
	case "GetSnapshotUri":
		return `<Envelope><Body><GetSnapshotUriResponse><MediaUri>
			<Uri>http://device/snapshot.jpg</Uri>
			</MediaUri></GetSnapshotUriResponse></Body></Envelope>`, true
	case "GetImagingSettings":
		return `<Envelope><Body><GetImagingSettingsResponse><ImagingSettings>
			<Brightness>50.0</Brightness>
			<ColorSaturation>55.0</ColorSaturation>
			<Contrast>60.0</Contrast>
			</ImagingSettings></GetImagingSettingsResponse></Body></Envelope>`, true
	}
	return "", false
}

func (sd *scriptedDevice) recorded() []string {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return append([]string(nil), sd.calls...)
}

func newTestDevice(serviceURL string) *device.Device {
	dev := &device.Device{}
	dev.SetServiceURL(serviceURL)
	dev.SetCredentials("admin", "secret")
	return dev
}

func TestFetch_FullPipeline(t *testing.T) {
	sd := newScriptedDevice(t)
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")

	fetcher := NewFetcher(NewClient(5 * time.Second))
	if err := fetcher.Fetch(context.Background(), dev); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := []string{
		"GetCapabilities", "GetDeviceInformation", "GetNetworkInterfaces",
		"GetProfiles", "GetStreamUri", "GetStreamUri",
	}
	got := sd.recorded()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if dev.Manufacturer != "HIKVISION" || dev.Model != "DS-2CD2085" {
		t.Errorf("device info = %q/%q, want HIKVISION/DS-2CD2085", dev.Manufacturer, dev.Model)
	}
	if dev.SerialNumber != "SN-1234" || dev.FirmwareVersion != "V5.7.3" {
		t.Errorf("serial/firmware = %q/%q", dev.SerialNumber, dev.FirmwareVersion)
	}
	if dev.NetworkInterface.Token != "eth0" || dev.NetworkInterface.MTU != 1500 || dev.NetworkInterface.IPv4PrefixLen != 24 {
		t.Errorf("network interface = %+v", dev.NetworkInterface)
	}
	if len(dev.Profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(dev.Profiles))
	}
	if dev.Profiles[0].StreamURI != "rtsp://device/prof0" {
		t.Errorf("profile 0 stream URI = %q", dev.Profiles[0].StreamURI)
	}
	if dev.Profiles[1].StreamURI != "rtsp://device/prof1" {
		t.Errorf("profile 1 stream URI = %q", dev.Profiles[1].StreamURI)
	}
	if dev.Profiles[0].VideoEncoder.Width != 1920 || dev.Profiles[0].VideoEncoder.Encoding != "H264" {
		t.Errorf("video encoder = %+v", dev.Profiles[0].VideoEncoder)
	}
}

func TestFetch_ProfilesFailureStopsPipeline(t *testing.T) {
	sd := newScriptedDevice(t)
	sd.failOn = "GetProfiles"
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")

	fetcher := NewFetcher(NewClient(5 * time.Second))
	err := fetcher.Fetch(context.Background(), dev)
	if err == nil {
		t.Fatal("Fetch() succeeded, want failure")
	}

	for _, op := range sd.recorded() {
		if op == "GetStreamUri" {
			t.Fatal("GetStreamUri was attempted after GetProfiles failed")
		}
	}

	status, ok := IsHTTPError(err)
	if !ok || status != http.StatusInternalServerError {
		t.Errorf("error = %v, want HTTP 500", err)
	}
	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Step != "GetProfiles" {
		t.Errorf("error step = %v, want GetProfiles", err)
	}
}

func TestFetch_UnauthorizedIsHTTPError(t *testing.T) {
	sd := newScriptedDevice(t)
	sd.failOn = "GetDeviceInformation"
	sd.status = http.StatusUnauthorized
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")

	fetcher := NewFetcher(NewClient(5 * time.Second))
	err := fetcher.Fetch(context.Background(), dev)
	if err == nil {
		t.Fatal("Fetch() succeeded, want failure")
	}
	status, ok := IsHTTPError(err)
	if !ok || status != http.StatusUnauthorized {
		t.Errorf("error = %v, want HTTP 401", err)
	}
	if len(sd.recorded()) != 2 {
		t.Errorf("calls = %v, want pipeline to stop after second request", sd.recorded())
	}
}

func TestFetch_UnreachableDevice(t *testing.T) {
	dev := newTestDevice("http://127.0.0.1:1/onvif/device_service")

	fetcher := NewFetcher(NewClient(time.Second))
	err := fetcher.Fetch(context.Background(), dev)
	if err == nil {
		t.Fatal("Fetch() succeeded against closed port")
	}
	if !IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}

func TestFetch_SecurityHeaderOnlyAfterCapabilities(t *testing.T) {
	var mu sync.Mutex
	bodies := make(map[string]string)

	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		op := operationOf(string(raw))
		mu.Lock()
		bodies[op] = string(raw)
		mu.Unlock()
		resp, _ := cannedResponse(op, string(raw), base)
		fmt.Fprint(w, resp)
	}))
	defer srv.Close()
	base = srv.URL

	dev := newTestDevice(srv.URL + "/onvif/device_service")
	fetcher := NewFetcher(NewClient(5 * time.Second))
	if err := fetcher.Fetch(context.Background(), dev); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Contains(bodies["GetCapabilities"], "UsernameToken") {
		t.Error("GetCapabilities request carries a security header")
	}
	for _, op := range []string{"GetDeviceInformation", "GetNetworkInterfaces", "GetProfiles", "GetStreamUri"} {
		if !strings.Contains(bodies[op], "UsernameToken") {
			t.Errorf("%s request lacks a security header", op)
		}
		if !strings.Contains(bodies[op], "admin") {
			t.Errorf("%s request lacks the username", op)
		}
	}
}

func TestFetchSnapshotURI(t *testing.T) {
	sd := newScriptedDevice(t)
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")

	fetcher := NewFetcher(NewClient(5 * time.Second))
	if err := fetcher.Fetch(context.Background(), dev); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	uri, err := fetcher.FetchSnapshotURI(context.Background(), dev, dev.Profiles[0])
	if err != nil {
		t.Fatalf("FetchSnapshotURI() error = %v", err)
	}
	if uri != "http://device/snapshot.jpg" {
		t.Errorf("snapshot URI = %q", uri)
	}
}

func TestFetchImageSettings(t *testing.T) {
	sd := newScriptedDevice(t)
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")

	fetcher := NewFetcher(NewClient(5 * time.Second))
	if err := fetcher.Fetch(context.Background(), dev); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if err := fetcher.FetchImageSettings(context.Background(), dev, dev.Profiles[0]); err != nil {
		t.Fatalf("FetchImageSettings() error = %v", err)
	}
	if dev.ImageSetting.Brightness != 50.0 || dev.ImageSetting.Contrast != 60.0 {
		t.Errorf("image settings = %+v", dev.ImageSetting)
	}
}

func TestFetchImageSettings_NoVideoSource(t *testing.T) {
	sd := newScriptedDevice(t)
	dev := newTestDevice(sd.srv.URL + "/onvif/device_service")
	dev.ImagingURL = sd.srv.URL + "/imaging"

	fetcher := NewFetcher(NewClient(5 * time.Second))
	err := fetcher.FetchImageSettings(context.Background(), dev, &device.MediaProfile{Token: "p"})
	if err == nil {
		t.Fatal("FetchImageSettings() succeeded without a video source token")
	}
	if !IsParseError(err) {
		t.Errorf("error = %v, want parse error", err)
	}
}
