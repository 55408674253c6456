package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ghalamif/QCFlow/pkg/qcflow"
)

func main() {
	flow, err := qcflow.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := qcflow.OpenJSONSource("../../data/histograms.json", flow.Config().Metric)
	if err != nil {
		log.Fatalf("open histograms: %v", err)
	}
	defer src.Close()

	callback := func(_ context.Context, n qcflow.Notification) error {
		fmt.Printf("%s alarm=%s to=%v archived=%s\n%s\n",
			n.Subject,
			n.AlarmID,
			n.Recipients,
			n.PayloadRef,
			n.Payload,
		)
		return nil
	}

	if _, err := flow.Run(ctx, src, qcflow.AlertCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("monitoring run: %v", err)
	}
}
