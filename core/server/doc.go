// Package server holds the HTTP server configuration.
//
// The start command owns the fiber app; this package only defines the port,
// the API key checked by the auth middleware, and the shutdown bound.
package server
