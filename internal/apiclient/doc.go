// Package apiclient is the HTTP client the CLI uses to talk to a running
// daemon.
package apiclient
