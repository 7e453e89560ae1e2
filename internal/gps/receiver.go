package gps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/gps_fix/internal/sentence"
)

const (
	DefaultMaxRetries = 10
	DefaultRetryDelay = 100 * time.Millisecond
)

// Sleeper pauses the calling goroutine. Tests swap in a recorder.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// ReceiverConfig tunes a Receiver. Zero values select the defaults.
type ReceiverConfig struct {
	MaxRetries int
	RetryDelay time.Duration // negative means no wait between cycles
	Aggregate  sentence.AggregateOptions

	// IdleCost is how long one availability poll can block when the line
	// is idle. It is taken off every retry delay so a call that finds
	// nothing still finishes within about MaxRetries x RetryDelay.
	IdleCost time.Duration

	Sleeper  Sleeper
	Registry prometheus.Registerer // nil disables metrics
}

// Receiver resolves position fixes from one GNSS receiver.
//
// It owns the retry counter for that receiver, so use exactly one Receiver
// per byte source. GetPos is not safe for concurrent use.
type Receiver struct {
	src   sentence.ByteSource
	cfg   ReceiverConfig
	nap   time.Duration
	sleep Sleeper
	m     *Metrics

	retry int
}

func NewReceiver(src sentence.ByteSource, cfg ReceiverConfig) *Receiver {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	} else if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	s := cfg.Sleeper
	if s == nil {
		s = realSleeper{}
	}
	nap := cfg.RetryDelay - max(cfg.IdleCost, 0)
	if nap < 0 {
		nap = 0
	}
	return &Receiver{src: src, cfg: cfg, nap: nap, sleep: s, m: newMetrics(cfg.Registry)}
}

// Retries returns the number of consecutive failed cycles so far. It is
// zero between calls.
func (r *Receiver) Retries() int {
	return r.retry
}

// GetPos polls the byte source until one of GGA, RMC or GLL (in that order)
// yields a valid position, and writes it to out.
//
// Each failed cycle is followed by the retry delay less IdleCost; after
// MaxRetries cycles it gives up and returns false. out is only written on success. A nil out
// returns false straight away without touching the source.
func (r *Receiver) GetPos(out *Fix) bool {
	// Every return resets the counter, so the bound check only matters if
	// that ever changes.
	if out == nil || r.retry >= r.cfg.MaxRetries {
		r.reset()
		r.m.reject()
		return false
	}

	for {
		r.retry++
		r.m.setRetries(r.retry)

		snap, res := sentence.Aggregate(r.src, r.cfg.Aggregate)
		r.m.cycle(res == sentence.ParseOK)

		for _, e := range extractors {
			if e.extract(snap, out) {
				r.reset()
				r.m.fix(e.key)
				return true
			}
		}

		if r.retry >= r.cfg.MaxRetries {
			r.reset()
			r.m.exhaust()
			return false
		}
		r.sleep.Sleep(r.nap)
	}
}

func (r *Receiver) reset() {
	r.retry = 0
	r.m.setRetries(0)
}
