package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Archanasadhasivam/AgriPricePredict/business/modelstore"
)

func writeDataset(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "prices.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, "Commodities,Jan-24,Feb-24\nRice,10,12\nGarlic,5,\n")
	out := filepath.Join(dir, "models.json")

	if err := run([]string{"-dataset", data, "-out", out}, io.Discard); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	models, err := modelstore.NewFileStore(out).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("models = %v, want only Rice", models)
	}
	if m := models["Rice"]; m.Slope != 0 || m.Intercept != 12 {
		t.Errorf("Rice = %+v", m)
	}

	if _, err := os.Stat(out + ".lock"); !os.IsNotExist(err) {
		t.Error("lock file should be removed after the run")
	}
}

func TestRunRefusesWhileLocked(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, "Commodities,Jan-24,Feb-24\nRice,10,12\n")
	out := filepath.Join(dir, "models.json")

	release, err := acquireLock(out + ".lock")
	if err != nil {
		t.Fatalf("acquireLock() error: %v", err)
	}
	defer release()

	err = run([]string{"-dataset", data, "-out", out}, io.Discard)
	if !errors.Is(err, errLocked) {
		t.Fatalf("err = %v, want errLocked", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("artifact must not be written while locked")
	}
}

func TestRunNothingTrainable(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, "Commodities,Jan-24,Feb-24\nRice,,\n")

	if err := run([]string{"-dataset", data, "-out", filepath.Join(dir, "m.json")}, io.Discard); err == nil {
		t.Fatal("expected error when no model is trained")
	}
}

func TestRunMissingDataset(t *testing.T) {
	dir := t.TempDir()
	if err := run([]string{"-dataset", filepath.Join(dir, "nope.csv"), "-out", filepath.Join(dir, "m.json")}, io.Discard); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}
