// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/gps_fix/internal/app"
)

func main() {
	scenario := flag.String("scenario", "./scenarios/cold_start.yaml", "replay scenario to play")
	flushFinal := flag.Bool("flush-final", false, "also use the last sentence of every cycle")
	flag.Parse()

	log.Printf("starting gps-fix (replay console) scenario=%s", *scenario)

	if err := app.RunReplayConsole(*scenario, *flushFinal); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
