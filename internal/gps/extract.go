package gps

import (
	"math"
	"strconv"

	"github.com/relabs-tech/gps_fix/internal/sentence"
)

// Sentence keys the receiver can take a position from, in priority order.
const (
	KeyGGA = "GPGGA"
	KeyRMC = "GPRMC"
	KeyGLL = "GPGLL"
)

// extractor describes where one sentence family keeps its position and how
// it says whether that position is any good. Indices are into the data
// fields, i.e. with the sentence key already stripped.
type extractor struct {
	key      string
	lat      int
	lon      int
	validity int
	valid    func(string) bool
}

// GGA: time, lat, N/S, lon, E/W, quality, ...
// RMC: time, status, lat, N/S, lon, E/W, ...
// GLL: lat, N/S, lon, E/W, time, status, ...
var extractors = []extractor{
	{key: KeyGGA, lat: 1, lon: 3, validity: 5, valid: qualityOK},
	{key: KeyRMC, lat: 2, lon: 4, validity: 1, valid: statusOK},
	{key: KeyGLL, lat: 0, lon: 2, validity: 5, valid: statusOK},
}

// qualityOK accepts any non-zero GGA fix quality indicator.
func qualityOK(v string) bool {
	if v == "" {
		return false
	}
	q, err := strconv.Atoi(v)
	return err == nil && q != 0
}

// statusOK rejects an empty status and the "V" (void) marker.
func statusOK(v string) bool {
	return v != "" && v != "V"
}

func (e extractor) minFields() int {
	return max(e.lat, e.lon, e.validity) + 1
}

// extract writes a fix into out and reports true, or leaves out alone.
func (e extractor) extract(snap sentence.Snapshot, out *Fix) bool {
	f, ok := snap[e.key]
	if !ok || len(f) < e.minFields() {
		return false
	}
	if !e.valid(f[e.validity]) {
		return false
	}

	lat, ok := decodeDMM(f[e.lat])
	if !ok {
		return false
	}
	lon, ok := decodeDMM(f[e.lon])
	if !ok {
		return false
	}

	*out = Fix{Latitude: lat, Longitude: lon, Source: e.key}
	return true
}

// decodeDMM splits a DDMM.MMMM / DDDMM.MMMM field into degrees and minutes.
func decodeDMM(s string) (Axis, bool) {
	raw, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Axis{}, false
	}
	whole := math.Floor(raw / 100)
	return newAxis(whole, raw-whole*100), true
}
