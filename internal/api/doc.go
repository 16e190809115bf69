// Package api defines the JSON types exchanged between the daemon's HTTP API
// and its clients.
package api
