// Package middleware groups the fiber middleware of the HTTP surface.
//
//   - rayid: assigns every request a ray id, stored in locals and echoed in the
//     X-Ray-ID response header.
//   - auth: checks the X-API-Key header against the configured key.
//
// Register rayid first so every later log line carries the id.
package middleware
