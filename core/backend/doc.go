// Package backend defines the capability interface a media server adapter
// implements and the glue that drives adapters through the reconcilers.
//
// Vendor clients live outside this module. They translate their payloads into
// entity.Record values and execute push descriptors.
package backend
