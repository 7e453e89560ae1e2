// Package sentence turns a non-blocking byte stream of NMEA 0183 talker
// sentences into per-cycle snapshots keyed by sentence identifier.
//
// Checksums are not verified; the transport is trusted.
package sentence
