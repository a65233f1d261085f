// Package tui is a live terminal viewer for discovery sessions.
//
// The Model shows a spinner while the probe window is open and appends a
// row per device as its metadata pipeline completes, green for success and
// red for failure. Sink adapts a running Bubble Tea program to
// discovery.EventSink, so the engine drives the screen directly.
package tui
