package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muldr/camscan/internal/config"
	"github.com/muldr/camscan/internal/credentials"
	"github.com/muldr/camscan/internal/device"
	"github.com/muldr/camscan/internal/discovery"
	"github.com/muldr/camscan/internal/metadata"
	"github.com/muldr/camscan/internal/server"
	"github.com/muldr/camscan/internal/tui"
	"github.com/muldr/camscan/internal/urls"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchGuard bounds how long a scan waits for metadata pipelines that are
// still running after the listen window closes.
const fetchGuard = 30 * time.Second

var (
	flagTimeoutMS int
	flagMulticast string

	scanSave bool

	credsUsername string

	serveHost string
	servePort int
)

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagTimeoutMS, "timeout", "t", 0, "Listen window in milliseconds (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagMulticast, "multicast", "m", "", "WS-Discovery multicast group (overrides config)")

	scanCmd.Flags().BoolVarP(&scanSave, "save", "s", false, "Record discovered cameras in the config registry")

	credsSetCmd.Flags().StringVarP(&credsUsername, "username", "u", "", "Account username (prompted if omitted)")
	credsCmd.AddCommand(credsListCmd)
	credsCmd.AddCommand(credsSetCmd)

	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "0.0.0.0", "Listen address")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8090, "Listen port")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mdnsCmd)
	rootCmd.AddCommand(credsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadScanSetup reads the config registry and derives the discovery
// configuration and credential store a session needs.
func loadScanSetup() (*config.Registry, discovery.Config, *credentials.Store, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, discovery.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := discovery.DefaultConfig()
	cfg.Timeout = registry.DiscoverTimeout()
	if registry.Preferences != nil && registry.Preferences.MulticastAddress != "" {
		cfg.MulticastAddress = registry.Preferences.MulticastAddress
	}
	// Flags beat config.
	if flagTimeoutMS > 0 {
		cfg.Timeout = time.Duration(flagTimeoutMS) * time.Millisecond
	}
	if flagMulticast != "" {
		cfg.MulticastAddress = flagMulticast
	}

	store := credentials.NewStore()
	registry.ApplyCredentials(store)

	return registry, cfg, store, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover ONVIF cameras on the local network",
	Long: `Sends a WS-Discovery probe over UDP multicast and enriches every camera
that answers: device information, network interfaces, media profiles, and
RTSP stream URIs.`,
	Example: `  camscan scan
  camscan scan --timeout 10000
  camscan scan --save`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	registry, cfg, store, err := loadScanSetup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := newCLISink(os.Stdout)
	engine := discovery.NewEngine(cfg, store, metadata.NewFetcher(nil), sink)

	fmt.Printf("Scanning for ONVIF cameras (%v window)...\n", cfg.Timeout)
	if err := engine.Start(ctx); err != nil {
		return err
	}

	devices, err := sink.Wait(ctx)
	if err != nil {
		engine.Stop()
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No cameras found.")
		fmt.Printf("If cameras are present on this network, see: %s\n", urls.Troubleshooting)
		return nil
	}

	fmt.Printf("\nFound %d camera(s):\n", len(devices))
	for _, dev := range devices {
		printDevice(os.Stdout, dev)
	}

	if scanSave {
		for _, dev := range devices {
			registry.RecordSighting(dev.UUID, dev.Address, dev.Manufacturer, dev.Model)
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("Recorded %d camera(s) in the registry.\n", len(devices))
	}
	return nil
}

// cliSink prints session events as they happen and collects enriched
// devices so runScan can summarize them after the session ends.
type cliSink struct {
	out io.Writer

	mu     sync.Mutex
	found  []*device.Device
	failed int

	finished chan int
	fatal    chan error
	outcome  chan struct{}
}

func newCLISink(out io.Writer) *cliSink {
	return &cliSink{
		out:      out,
		finished: make(chan int, 1),
		fatal:    make(chan error, 1),
		outcome:  make(chan struct{}, 64),
	}
}

func (s *cliSink) SearchStarted() {}

func (s *cliSink) DeviceFound(dev *device.Device) {
	s.mu.Lock()
	s.found = append(s.found, dev)
	s.mu.Unlock()
	fmt.Fprintf(s.out, "  + %s\n", dev)
	s.outcome <- struct{}{}
}

func (s *cliSink) DeviceFailed(dev *device.Device, err error) {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
	fmt.Fprintf(s.out, "  ! %s: %v\n", dev.Address, err)
	s.outcome <- struct{}{}
}

func (s *cliSink) SearchFinished(responders int) {
	s.finished <- responders
}

func (s *cliSink) SearchFailed(err error) {
	s.fatal <- err
}

// Wait blocks until the listen window closes and every responder's
// metadata pipeline has reported, then returns the enriched devices.
// Pipelines still running after fetchGuard are abandoned.
func (s *cliSink) Wait(ctx context.Context) ([]*device.Device, error) {
	var responders int
	select {
	case responders = <-s.finished:
	case err := <-s.fatal:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	guard := time.NewTimer(fetchGuard)
	defer guard.Stop()

	done := 0
	// Some outcomes may already be buffered from pipelines that finished
	// during the listen window.
	for done < responders {
		select {
		case <-s.outcome:
			done++
		case <-guard.C:
			fmt.Fprintf(s.out, "  ! gave up on %d camera(s) still fetching\n", responders-done)
			responders = done
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	devices := make([]*device.Device, len(s.found))
	copy(devices, s.found)
	return devices, nil
}

func printDevice(out io.Writer, dev *device.Device) {
	fmt.Fprintf(out, "\n%s %s at %s\n", dev.Manufacturer, dev.Model, dev.Address)
	fmt.Fprintf(out, "  Endpoint:  %s\n", dev.UUID)
	if dev.SerialNumber != "" {
		fmt.Fprintf(out, "  Serial:    %s\n", dev.SerialNumber)
	}
	if dev.FirmwareVersion != "" {
		fmt.Fprintf(out, "  Firmware:  %s\n", dev.FirmwareVersion)
	}
	if ni := dev.NetworkInterface; ni != nil {
		fmt.Fprintf(out, "  Interface: %s (MTU %d, /%d)\n", ni.Token, ni.MTU, ni.IPv4PrefixLen)
	}
	for _, profile := range dev.Profiles {
		if profile.StreamURI == "" {
			continue
		}
		fmt.Fprintf(out, "  Stream:    %s (%s)\n", profile.StreamURI, profile.Token)
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Discover cameras in a live terminal UI",
	Long: `Runs a discovery session and renders results in an interactive list as
cameras answer the probe and their metadata arrives.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, cfg, store, err := loadScanSetup()
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(), tea.WithAltScreen())
	engine := discovery.NewEngine(cfg, store, metadata.NewFetcher(nil), tui.NewSink(program))

	// Give the program a moment to take over the terminal before events
	// start flowing.
	go func() {
		time.Sleep(100 * time.Millisecond)
		if err := engine.Start(context.Background()); err != nil {
			program.Quit()
		}
	}()

	_, err = program.Run()
	engine.Stop()
	return err
}

var mdnsCmd = &cobra.Command{
	Use:   "mdns",
	Short: "Sweep the network for RTSP services over mDNS",
	Long: `Browses for _rtsp._tcp services via multicast DNS. Catches cameras that
advertise RTSP over Bonjour but do not answer WS-Discovery probes.`,
	RunE: runMDNS,
}

func runMDNS(cmd *cobra.Command, args []string) error {
	timeout := discovery.DefaultScanTimeout
	if flagTimeoutMS > 0 {
		timeout = time.Duration(flagTimeoutMS) * time.Millisecond
	}
	fmt.Printf("Browsing for RTSP services (%v)...\n", timeout)

	cameras, err := discovery.ScanForCameras(timeout)
	if err != nil {
		return fmt.Errorf("mDNS scan failed: %w", err)
	}
	if len(cameras) == 0 {
		fmt.Println("No RTSP services found.")
		fmt.Printf("mDNS needs multicast to reach the cameras, see: %s\n", urls.MulticastNetworking)
		return nil
	}

	fmt.Printf("\nFound %d service(s):\n", len(cameras))
	for _, cam := range cameras {
		fmt.Printf("  %s\n    %s\n", cam, cam.RTSPBase())
	}
	return nil
}

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage camera account credentials",
	Long: `Inspects and edits the accounts used for authenticated SOAP calls.
Overrides are stored per manufacturer keyword in the config registry;
built-in factory defaults cover common vendors out of the box.

How accounts are resolved: ` + urls.CredentialsGuide,
}

var credsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manufacturers with a configured account",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store := credentials.NewStore()
		registry.ApplyCredentials(store)

		for _, manufacturer := range store.Entries() {
			fmt.Println(manufacturer)
		}
		return nil
	},
}

var credsSetCmd = &cobra.Command{
	Use:   "set [manufacturer]",
	Short: "Set the account for a manufacturer",
	Long: `Sets the username and password used for cameras whose manufacturer
matches the given keyword. With no manufacturer argument the account
becomes the fallback for unmatched cameras. The password is prompted
and never echoed.`,
	Example: `  camscan creds set hikvision --username admin
  camscan creds set`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCredsSet,
}

func runCredsSet(cmd *cobra.Command, args []string) error {
	manufacturer := ""
	if len(args) == 1 {
		manufacturer = strings.ToLower(strings.TrimSpace(args[0]))
	}

	username := credsUsername
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	registry.SetCredential(manufacturer, username, string(password))
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	if manufacturer == "" {
		fmt.Println("Fallback account updated.")
	} else {
		fmt.Printf("Account for %q updated.\n", manufacturer)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the discovery WebSocket server",
	Long: `Starts an HTTP server that triggers discovery sessions on demand and
streams session events to WebSocket subscribers.

Endpoints:
  POST /scan    start a discovery session (409 if one is active)
  GET  /ws      subscribe to session events
  GET  /status  engine state and version`,
	Example: `  camscan serve
  camscan serve --host 127.0.0.1 --port 9000`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	_, cfg, store, err := loadScanSetup()
	if err != nil {
		return err
	}

	hub := server.NewHub()
	engine := discovery.NewEngine(cfg, store, metadata.NewFetcher(nil), hub)
	srv := server.New(&server.Config{Host: serveHost, Port: servePort}, engine, hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on %s:%d\n", serveHost, servePort)
	return srv.ListenAndServe(ctx)
}
