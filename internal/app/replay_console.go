// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/gps_fix/internal/gps"
	"github.com/relabs-tech/gps_fix/internal/replay"
	"github.com/relabs-tech/gps_fix/internal/sentence"
)

// RunReplayConsole plays a scenario file through a receiver and prints every
// GetPos outcome until the scenario is used up.
func RunReplayConsole(path string, flushFinal bool) error {
	s, err := replay.LoadScenario(path)
	if err != nil {
		return err
	}
	cfg := gps.ReceiverConfig{
		Aggregate: sentence.AggregateOptions{FlushFinal: flushFinal},
	}
	return replayScenario(s, cfg, time.Now, func(line string) {
		fmt.Println(line)
	})
}

func replayScenario(s replay.Scenario, cfg gps.ReceiverConfig, now func() time.Time, emit func(string)) error {
	src := s.Source()
	defer src.Close()

	rcv := gps.NewReceiver(src, cfg)
	for call := 1; src.Pending() > 0; call++ {
		var fix gps.Fix
		if !rcv.GetPos(&fix) {
			emit(fmt.Sprintf("#%d no fix", call))
			continue
		}
		r := gps.NewReport(fix, now())
		emit(fmt.Sprintf("#%d from %s: %s (%s)", call, fix.Source, r.DMM, r.DMS))
	}
	return nil
}
