package gps

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gps_fix/internal/port"
)

type recordingSleeper struct {
	naps []time.Duration
}

func (s *recordingSleeper) Sleep(d time.Duration) {
	s.naps = append(s.naps, d)
}

func (s *recordingSleeper) total() time.Duration {
	var sum time.Duration
	for _, d := range s.naps {
		sum += d
	}
	return sum
}

const (
	ggaValid  = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"
	ggaNoFix  = "$GPGGA,123519,4807.038,N,01131.000,E,0,00,,,M,,M,,*66\r\n"
	rmcValid  = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n"
	rmcVoid   = "$GPRMC,123519,V,4807.038,N,01131.000,E,,,230394,,*2B\r\n"
	gllValid  = "$GPGLL,4807.038,N,01131.000,E,123519,A*2C\r\n"
	gsaFiller = "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39\r\n"
)

func newTestReceiver(src *port.Mock, cfg ReceiverConfig) (*Receiver, *recordingSleeper) {
	s := &recordingSleeper{}
	cfg.Sleeper = s
	return NewReceiver(src, cfg), s
}

func TestGetPos_FirstCycleSuccess(t *testing.T) {
	src := port.NewMock(ggaValid + gsaFiller)
	r, sleeper := newTestReceiver(src, ReceiverConfig{})

	var f Fix
	require.True(t, r.GetPos(&f))
	assert.Equal(t, KeyGGA, f.Source)
	assert.Equal(t, "48 7.038000,11 31.000000", f.String())
	assert.Equal(t, 0, r.Retries())
	assert.Empty(t, sleeper.naps)
}

func TestGetPos_PriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  string
	}{
		{"gga beats rmc and gll", gllValid + rmcValid + ggaValid + gsaFiller, KeyGGA},
		{"rmc when gga has no fix", ggaNoFix + gllValid + rmcValid + gsaFiller, KeyRMC},
		{"gll when rmc is void", ggaNoFix + rmcVoid + gllValid + gsaFiller, KeyGLL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestReceiver(port.NewMock(tc.chunk), ReceiverConfig{})
			var f Fix
			require.True(t, r.GetPos(&f))
			assert.Equal(t, tc.want, f.Source)
		})
	}
}

func TestGetPos_LastSentenceOfCycleIsIgnored(t *testing.T) {
	// The GGA sentence is the last group of every cycle, so it never makes
	// it into a snapshot.
	src := port.NewMock(ggaValid, ggaValid, ggaValid)
	r, _ := newTestReceiver(src, ReceiverConfig{MaxRetries: 3})

	var f Fix
	assert.False(t, r.GetPos(&f))
}

func TestGetPos_FlushFinalGroup(t *testing.T) {
	src := port.NewMock(ggaValid)
	cfg := ReceiverConfig{}
	cfg.Aggregate.FlushFinal = true
	r, _ := newTestReceiver(src, cfg)

	var f Fix
	require.True(t, r.GetPos(&f))
	assert.Equal(t, KeyGGA, f.Source)
}

func TestGetPos_RetriesUntilFix(t *testing.T) {
	src := port.NewMock(ggaNoFix+gsaFiller, rmcVoid+gsaFiller, rmcValid+gsaFiller)
	r, sleeper := newTestReceiver(src, ReceiverConfig{})

	var f Fix
	require.True(t, r.GetPos(&f))
	assert.Equal(t, KeyRMC, f.Source)
	assert.Equal(t, []time.Duration{DefaultRetryDelay, DefaultRetryDelay}, sleeper.naps)
	assert.Equal(t, 0, r.Retries())
}

func TestGetPos_ExhaustsAfterBound(t *testing.T) {
	src := port.NewMock()
	r, sleeper := newTestReceiver(src, ReceiverConfig{})

	f := Fix{Source: "previous"}
	assert.False(t, r.GetPos(&f))

	// An empty source costs exactly one poll per cycle.
	assert.Equal(t, DefaultMaxRetries, src.Polls())
	assert.Len(t, sleeper.naps, DefaultMaxRetries-1)
	assert.Equal(t, 900*time.Millisecond, sleeper.total())
	assert.Equal(t, 0, r.Retries())
	assert.Equal(t, Fix{Source: "previous"}, f, "output is left untouched on failure")

	// The next call starts from scratch.
	src.Push(ggaValid + gsaFiller)
	assert.True(t, r.GetPos(&f))
	assert.Equal(t, 0, r.Retries())
}

func TestGetPos_NilOutput(t *testing.T) {
	src := port.NewMock(ggaValid + gsaFiller)
	r, sleeper := newTestReceiver(src, ReceiverConfig{})

	assert.False(t, r.GetPos(nil))
	assert.Equal(t, 0, src.Polls())
	assert.Empty(t, sleeper.naps)
	assert.Equal(t, 0, r.Retries())

	var f Fix
	assert.True(t, r.GetPos(&f))
}

func TestGetPos_CustomBoundAndDelay(t *testing.T) {
	src := port.NewMock()
	r, sleeper := newTestReceiver(src, ReceiverConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	var f Fix
	assert.False(t, r.GetPos(&f))
	assert.Equal(t, 3, src.Polls())
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, sleeper.naps)
}

func TestGetPos_NoDelay(t *testing.T) {
	r, sleeper := newTestReceiver(port.NewMock(), ReceiverConfig{RetryDelay: -1})

	var f Fix
	assert.False(t, r.GetPos(&f))
	assert.Equal(t, make([]time.Duration, DefaultMaxRetries-1), sleeper.naps)
}

func TestGetPos_IdleCostShortensDelay(t *testing.T) {
	r, sleeper := newTestReceiver(port.NewMock(), ReceiverConfig{IdleCost: 60 * time.Millisecond})

	var f Fix
	assert.False(t, r.GetPos(&f))
	require.Len(t, sleeper.naps, DefaultMaxRetries-1)
	assert.Equal(t, 360*time.Millisecond, sleeper.total())

	r, sleeper = newTestReceiver(port.NewMock(), ReceiverConfig{IdleCost: time.Second})
	assert.False(t, r.GetPos(&f))
	assert.Zero(t, sleeper.total())
}

// slowIdleReader behaves like a serial port that waits out its read timeout
// on a silent line.
type slowIdleReader struct {
	timeout time.Duration
}

func (r slowIdleReader) Read([]byte) (int, error) {
	time.Sleep(r.timeout)
	return 0, io.EOF
}

func TestGetPos_BlockingPollsStayWithinBudget(t *testing.T) {
	const timeout = 40 * time.Millisecond
	src := port.NewReader(slowIdleReader{timeout: timeout}, 16)
	r := NewReceiver(src, ReceiverConfig{RetryDelay: timeout, IdleCost: timeout})

	start := time.Now()
	var f Fix
	assert.False(t, r.GetPos(&f))
	elapsed := time.Since(start)

	budget := DefaultMaxRetries * timeout
	assert.GreaterOrEqual(t, elapsed, budget)
	assert.Less(t, elapsed, budget+(DefaultMaxRetries-1)*timeout/2)
}

func TestGetPos_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := port.NewMock(ggaNoFix+gsaFiller, ggaValid+gsaFiller)
	r, _ := newTestReceiver(src, ReceiverConfig{Registry: reg})

	var f Fix
	require.True(t, r.GetPos(&f))
	assert.False(t, r.GetPos(nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.m.cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.fixes.WithLabelValues(KeyGGA)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.rejected))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.m.exhausted))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.m.retries))
}

func TestGetPos_ParseFaultCountsAsFailedCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := port.NewMock(ggaValid + gsaFiller + rmcValid + gsaFiller)
	cfg := ReceiverConfig{MaxRetries: 1, Registry: reg}
	cfg.Aggregate.MaxSentences = 2
	r, _ := newTestReceiver(src, cfg)

	var f Fix
	assert.False(t, r.GetPos(&f))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.parseFaults))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.exhausted))
}
