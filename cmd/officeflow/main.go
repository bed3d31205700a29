// main.go - OfficeFlow server entry point
package main

import (
	"log"
	"net/http"

	"github.com/robfig/cron/v3"

	"officeflow/internal/config"
	"officeflow/internal/gateway"
	"officeflow/internal/handlers"
	"officeflow/internal/store"
	"officeflow/internal/workflow"
)

func main() {
	cfg := config.Load()

	db, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer db.Close()

	gw := gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	flow := workflow.New(db, gw, workflow.Options{
		ClientURL:            cfg.ClientURL,
		Currency:             cfg.Currency,
		OutstandingThreshold: cfg.OutstandingThreshold,
	})

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSpec, func() {
		n, err := flow.SweepOutstanding()
		if err != nil {
			log.Printf("sweep: err=%v", err)
			return
		}
		if n > 0 {
			log.Printf("sweep: escalated=%d", n)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	h := handlers.New(db, flow)

	log.Printf("listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, h.Routes()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
