// Package api defines the transport representation of analyses shared by the
// daemon's HTTP endpoints and the CLI client, plus the client itself.
package api
