package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gps_fix/internal/config"
	"github.com/relabs-tech/gps_fix/internal/gps"
)

// RunGPSProducer polls the receiver for position fixes and publishes each
// one as JSON to the configured MQTT topic.
func RunGPSProducer() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Metrics ----
	reg := prometheus.NewRegistry()
	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		go func() {
			log.Printf("gps: metrics listening on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("gps: metrics server stopped: %v", err)
			}
		}()
	}

	// ---- 3) Open byte source ----
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	rcv := gps.NewReceiver(src, receiverConfig(cfg, reg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pollFixes(ctx, rcv, time.Duration(cfg.GPSPollInterval)*time.Millisecond, func(r gps.Report) error {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		token := client.Publish(cfg.TopicGPSPosition, 0, true, payload)
		token.Wait()
		return token.Error()
	})
}

// pollFixes calls GetPos once per interval until ctx is done and hands every
// fix to publish. Publish errors are logged, not fatal.
func pollFixes(ctx context.Context, rcv *gps.Receiver, interval time.Duration, publish func(gps.Report) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	misses := 0
	for {
		var fix gps.Fix
		if rcv.GetPos(&fix) {
			if misses > 0 {
				log.Printf("gps: fix recovered after %d failed polls", misses)
				misses = 0
			}
			r := gps.NewReport(fix, time.Now())
			if err := publish(r); err != nil {
				log.Printf("gps: publish error: %v", err)
			} else {
				log.Printf("gps: fix from %s: %s", fix.Source, fix)
			}
		} else {
			misses++
			log.Printf("gps: no fix (%d in a row)", misses)
		}

		select {
		case <-ctx.Done():
			log.Println("gps: shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
