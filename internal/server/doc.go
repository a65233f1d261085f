// Package server exposes discovery sessions over HTTP and WebSocket.
//
// The Server wires a discovery.Engine to a Hub of WebSocket subscribers:
// every session lifecycle event and per-device outcome is broadcast as a
// JSON Event on /ws. POST /scan triggers a session (one at a time; a
// concurrent request gets 409), and /status reports the engine state.
//
// The bridge is meant for LAN dashboards watching camera discovery live;
// it performs no authentication and should not be exposed beyond the
// local network.
package server
