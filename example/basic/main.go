package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/QCFlow"
)

func main() {
	flow, err := qcflow.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := qcflow.OpenJSONSource("../../data/histograms.json", flow.Config().Metric)
	if err != nil {
		log.Fatalf("open histograms: %v", err)
	}
	defer src.Close()

	results, err := flow.Run(ctx, src)
	if err != nil && err != context.Canceled {
		log.Fatalf("monitoring run: %v", err)
	}
	log.Printf("processed %d histograms", len(results))
}
