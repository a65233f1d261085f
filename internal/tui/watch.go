package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muldr/camscan/internal/device"
)

// Messages carrying sink events into the Bubble Tea loop
type searchStartedMsg struct{}
type deviceFoundMsg struct{ dev *device.Device }
type deviceFailedMsg struct {
	dev *device.Device
	err error
}
type searchFinishedMsg struct{ responders int }
type searchFailedMsg struct{ err error }

// cameraItem wraps a discovered camera for bubbles/list
type cameraItem struct {
	dev    *device.Device
	failed bool
	err    error
}

// FilterValue implements list.Item
func (c cameraItem) FilterValue() string {
	return c.dev.Address + " " + c.dev.Manufacturer + " " + c.dev.Model
}

// Title returns the camera identity for list display
func (c cameraItem) Title() string {
	name := c.dev.Address
	if c.dev.Model != "" {
		name = fmt.Sprintf("%s (%s)", c.dev.Model, c.dev.Address)
	}
	if c.failed {
		return FailedStyle.Render("✗ " + name)
	}
	return FoundStyle.Render("✓ " + name)
}

// Description returns camera details for list display
func (c cameraItem) Description() string {
	if c.failed {
		return "  " + c.err.Error()
	}
	streams := 0
	for _, profile := range c.dev.Profiles {
		if profile.StreamURI != "" {
			streams++
		}
	}
	parts := []string{}
	if c.dev.Manufacturer != "" {
		parts = append(parts, c.dev.Manufacturer)
	}
	if c.dev.FirmwareVersion != "" {
		parts = append(parts, "fw "+c.dev.FirmwareVersion)
	}
	parts = append(parts, fmt.Sprintf("%d stream(s)", streams))
	return "  " + strings.Join(parts, " • ")
}

// cameraDelegate renders camera rows compactly
type cameraDelegate struct{}

func (cameraDelegate) Height() int                         { return 2 }
func (cameraDelegate) Spacing() int                        { return 1 }
func (cameraDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (cameraDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	camera, ok := item.(cameraItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}
	fmt.Fprintf(w, "%s%s\n%s%s", cursor, camera.Title(), cursor, camera.Description())
}

// Model is the live discovery viewer: a spinner while the session listens,
// and a list that fills in as device pipelines complete.
type Model struct {
	scanning   bool
	finished   bool
	responders int
	outcomes   int
	sessionErr error

	cameras list.Model
	spinner spinner.Model
	width   int
	height  int
}

// NewModel creates the viewer model.
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	delegate := cameraDelegate{}
	cameras := list.New([]list.Item{}, delegate, 0, 0)
	cameras.Title = "Discovered Cameras"
	cameras.SetShowStatusBar(false)
	cameras.SetFilteringEnabled(true)
	cameras.Styles.Title = TitleStyle

	return Model{
		cameras: cameras,
		spinner: s,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cameras.SetWidth(msg.Width - 4)
		m.cameras.SetHeight(msg.Height - 8)

	case searchStartedMsg:
		m.scanning = true
		m.finished = false
		m.responders = 0
		m.outcomes = 0
		m.sessionErr = nil
		m.cameras.SetItems([]list.Item{})
		return m, m.spinner.Tick

	case deviceFoundMsg:
		m.outcomes++
		items := append(m.cameras.Items(), cameraItem{dev: msg.dev})
		m.cameras.SetItems(items)

	case deviceFailedMsg:
		m.outcomes++
		items := append(m.cameras.Items(), cameraItem{dev: msg.dev, failed: true, err: msg.err})
		m.cameras.SetItems(items)

	case searchFinishedMsg:
		m.scanning = false
		m.finished = true
		m.responders = msg.responders

	case searchFailedMsg:
		m.scanning = false
		m.sessionErr = msg.err

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.cameras, cmd = m.cameras.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.sessionErr != nil:
		b.WriteString(FailedStyle.Render("  ✗ discovery failed: " + m.sessionErr.Error()))
		b.WriteString("\n")
	case m.scanning:
		b.WriteString(StatusStyle.Render(fmt.Sprintf("%s probing for cameras...", m.spinner.View())))
		b.WriteString("\n")
	case m.finished:
		status := fmt.Sprintf("search finished: %d responder(s)", m.responders)
		if m.outcomes < m.responders {
			status += fmt.Sprintf(", %d pipeline(s) still running", m.responders-m.outcomes)
		}
		b.WriteString(StatusStyle.Render(status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.cameras.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("q: quit"))
	return b.String()
}

// Sink adapts a running Bubble Tea program to discovery.EventSink by
// forwarding each event as a message.
type Sink struct {
	program *tea.Program
}

// NewSink wraps program.
func NewSink(program *tea.Program) *Sink {
	return &Sink{program: program}
}

func (s *Sink) SearchStarted() {
	s.program.Send(searchStartedMsg{})
}

func (s *Sink) DeviceFound(dev *device.Device) {
	s.program.Send(deviceFoundMsg{dev: dev})
}

func (s *Sink) DeviceFailed(dev *device.Device, err error) {
	s.program.Send(deviceFailedMsg{dev: dev, err: err})
}

func (s *Sink) SearchFinished(responders int) {
	s.program.Send(searchFinishedMsg{responders: responders})
}

func (s *Sink) SearchFailed(err error) {
	s.program.Send(searchFailedMsg{err: err})
}
