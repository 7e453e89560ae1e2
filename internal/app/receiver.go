package app

import (
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/gps_fix/internal/config"
	"github.com/relabs-tech/gps_fix/internal/gps"
	"github.com/relabs-tech/gps_fix/internal/port"
	"github.com/relabs-tech/gps_fix/internal/replay"
	"github.com/relabs-tech/gps_fix/internal/sentence"
)

// openSource opens the replay scenario when one is configured, the serial
// port otherwise.
func openSource(cfg *config.Config) (port.Port, error) {
	if cfg.GPSReplayFile != "" {
		s, err := replay.LoadScenario(cfg.GPSReplayFile)
		if err != nil {
			return nil, err
		}
		log.Printf("gps: replaying scenario %q from %s (%d cycles, repeat %d)",
			s.Name, cfg.GPSReplayFile, len(s.Cycles), s.Repeat)
		return s.Source(), nil
	}

	p, err := port.Open(portOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("gps serial: %w", err)
	}
	log.Printf("gps: serial port opened on %s at %d baud (driver %s)",
		cfg.GPSSerialPort, cfg.GPSBaudRate, cfg.GPSSerialDriver)
	return p, nil
}

func portOptions(cfg *config.Config) port.Options {
	return port.Options{
		Driver:      cfg.GPSSerialDriver,
		Device:      cfg.GPSSerialPort,
		BaudRate:    cfg.GPSBaudRate,
		ReadTimeout: time.Duration(cfg.GPSReadTimeoutMS) * time.Millisecond,
		BufferSize:  cfg.GPSFrameBufferSize,
	}
}

func receiverConfig(cfg *config.Config, reg prometheus.Registerer) gps.ReceiverConfig {
	// Replay sources answer Available without waiting.
	var idle time.Duration
	if cfg.GPSReplayFile == "" {
		idle = portOptions(cfg).IdleCost()
	}
	return gps.ReceiverConfig{
		MaxRetries: cfg.GPSMaxRetries,
		RetryDelay: time.Duration(cfg.GPSRetryDelayMS) * time.Millisecond,
		IdleCost:   idle,
		Aggregate: sentence.AggregateOptions{
			BufferSize:   cfg.GPSFrameBufferSize,
			MaxSentences: cfg.GPSMaxSentences,
			FlushFinal:   cfg.GPSFlushFinalGroup,
		},
		Registry: reg,
	}
}
