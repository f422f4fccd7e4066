// alert-dispatcher drains the alert outbox to Pub/Sub. It is safe to run more
// than one instance; rows are claimed with SKIP LOCKED.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	PUBSUB_PROJECT_ID=... ALERT_TOPIC_ID=... go run ./cmd/alert-dispatcher
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/workflow"
)

func main() {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	dispatcher := workflow.NewAlertDispatcher(db, logger)
	logger.WithField("dispatcher_id", dispatcher.DispatcherID).Info("alert dispatcher starting")
	dispatcher.Run(sigCtx)
	logger.Info("alert dispatcher stopped")
}
