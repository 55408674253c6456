package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ghalamif/QCFlow"
)

func main() {
	cfg, err := qcflow.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier, alarms, closeAlarms := qcflow.NewChannelNotifier("fanout", 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fanoutWorker("pager", alarms)
	}()

	monitor, err := qcflow.NewMonitor(ctx, cfg, qcflow.WithNotifier(notifier))
	if err != nil {
		log.Fatalf("build monitor: %v", err)
	}
	defer monitor.Close()

	// Feed raw per-scan samples; every flush becomes one point of the series.
	rec, err := qcflow.NewRecorder(monitor, time.Now().UTC().Truncate(time.Hour))
	if err != nil {
		log.Fatalf("recorder: %v", err)
	}
	for i := 0; i < 100; i++ {
		rec.Record(float64(i%7) - 3)
	}
	res, err := rec.Close(ctx)
	if err != nil {
		log.Fatalf("flush: %v", err)
	}
	log.Printf("persisted %s decision=%s", qcflow.FormatPoint(res.Point), res.Decision.State)

	closeAlarms()
	wg.Wait()
}

func fanoutWorker(name string, alarms <-chan qcflow.Notification) {
	for n := range alarms {
		fmt.Printf("[%s] %s -> %v (%s)\n", name, n.Subject, n.Recipients, n.PayloadRef)
	}
}
