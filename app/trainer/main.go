// Command trainer fits the per-commodity price models from the dataset and
// writes the artifact the server loads at startup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Archanasadhasivam/AgriPricePredict/business/dataset"
	"github.com/Archanasadhasivam/AgriPricePredict/business/modelstore"
	"github.com/Archanasadhasivam/AgriPricePredict/business/trainer"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/config"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
)

var errLocked = errors.New("another training run holds the lock")

func main() {
	logger.Init(os.Getenv("APP_ENV"))

	if err := run(os.Args[1:], os.Stderr); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func run(args []string, stderr io.Writer) error {
	defaults := config.LoadModel()

	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	datasetPath := fs.String("dataset", defaults.DatasetPath, "price dataset, .csv or .xlsx")
	outPath := fs.String("out", defaults.ArtifactPath, "model artifact to write")
	identifier := fs.String("identifier", defaults.IdentifierColumn, "name of the commodity column")
	if err := fs.Parse(args); err != nil {
		return err
	}

	release, err := acquireLock(*outPath + ".lock")
	if err != nil {
		return err
	}
	defer release()

	table, err := dataset.LoadFile(*datasetPath, dataset.Options{IdentifierColumn: *identifier})
	if err != nil {
		return err
	}
	if !table.Chronological {
		logger.Warn("Month columns are not all dates, using source column order")
	}

	result := trainer.Train(table)
	for _, o := range result.Omissions {
		logger.Warn("Commodity omitted", "commodity", o.Commodity, "reason", o.Reason, "valid_columns", o.ValidColumns)
	}
	if len(result.Models) == 0 {
		return fmt.Errorf("no commodity could be trained from %s", *datasetPath)
	}

	if err := modelstore.NewFileStore(*outPath).Save(result.Models); err != nil {
		return err
	}

	logger.Info("Training complete", "models", len(result.Models), "omitted", len(result.Omissions), "artifact", *outPath)
	return nil
}

// acquireLock creates the lock file exclusively. A leftover lock from a
// crashed run has to be removed by hand.
func acquireLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", errLocked, path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()

	return func() {
		if err := os.Remove(path); err != nil {
			logger.Warn("Failed to remove lock file", "path", path, "error", err.Error())
		}
	}, nil
}
