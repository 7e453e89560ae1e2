package gps

import "time"

// Report is the JSON message published for every fix.
type Report struct {
	Time      time.Time `json:"time"`
	Fix       Fix       `json:"fix"`
	DMM       string    `json:"dmm"` // Fix.String()
	DMS       string    `json:"dms"`
	LatDecDeg float64   `json:"lat_dec_deg"` // decimal degrees, no hemisphere
	LonDecDeg float64   `json:"lon_dec_deg"`
}

func NewReport(f Fix, at time.Time) Report {
	return Report{
		Time:      at.UTC(),
		Fix:       f,
		DMM:       f.String(),
		DMS:       f.DMS(),
		LatDecDeg: f.Latitude.Decimal(),
		LonDecDeg: f.Longitude.Decimal(),
	}
}
