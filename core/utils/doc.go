// Package utils provides loose-to-strict value conversion used when canonical records
// arrive as decoded JSON (numbers as float64, ids as either strings or numbers).
package utils
