package gps

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"
)

// Axis is one coordinate split the way the receiver reports it.
//
// Value is Degrees*100 + Minutes, i.e. the DDMM.MMMM number recomposed,
// NOT decimal degrees. Use Decimal for that.
type Axis struct {
	Degrees float64 `json:"degrees"`
	Minutes float64 `json:"minutes"`
	Value   float64 `json:"value"`
}

func newAxis(deg, mins float64) Axis {
	return Axis{Degrees: deg, Minutes: mins, Value: deg*100 + mins}
}

// Decimal converts the axis to decimal degrees. Hemisphere is not tracked,
// so the result is always non-negative for well-formed input.
func (a Axis) Decimal() float64 {
	return a.Degrees + a.Minutes/60
}

// Fix is a validated position taken from one sentence family in one
// polling cycle.
type Fix struct {
	Latitude  Axis   `json:"latitude"`
	Longitude Axis   `json:"longitude"`
	Source    string `json:"source"` // sentence key, e.g. "GPGGA"
}

// String renders "<lat deg> <lat min>,<lon deg> <lon min>", e.g.
// "48 7.038000,11 31.000000".
func (f Fix) String() string {
	return fmt.Sprintf("%d %f,%d %f",
		int(f.Latitude.Degrees), f.Latitude.Minutes,
		int(f.Longitude.Degrees), f.Longitude.Minutes,
	)
}

// DMS renders both axes as degrees, minutes and seconds.
func (f Fix) DMS() string {
	return nmea.FormatDMS(f.Latitude.Decimal()) + "," + nmea.FormatDMS(f.Longitude.Decimal())
}
