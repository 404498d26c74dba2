package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/bakery_backend/config"
	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/sirupsen/logrus"
)

// stock-ledger-rebuild re-projects stock_ledger_entries from the stored transactions,
// e.g. after a recipe correction or a manual data fix.
func main() {
	kind := flag.String("kind", "", "Optional: Sale, StockTransfer, KitchenIssue or KitchenProduction (default all)")
	flag.Parse()

	settings := config.LoadSettings()
	db := config.ConnectDatabaseWithRetry(settings)
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	// Settings are read straight from the table; no cache for a one-off run.
	engine := workflow.NewEngine(
		models.NewDatabase(db),
		workflow.DefaultLookups(models.NewSettingsStore(nil, 0)),
		workflow.EngineOptions{Logger: logger},
	)

	n, err := engine.RebuildStock(context.Background(), *kind)
	if err != nil {
		logger.WithFields(logrus.Fields{"kind": *kind, "rebuilt": n}).Error(err.Error())
		os.Exit(1)
	}
	fmt.Printf("rebuilt stock of %d transactions\n", n)
}
