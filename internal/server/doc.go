// Package server is the HTTP adapter: it decodes requests, calls engine
// operations, and encodes sessions, stats and structured errors as JSON.
// Clients poll; the server pushes nothing.
package server
