// Package tables reads and writes the tidied CSV artifacts consumed by the
// dashboard.
package tables

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rotisserie/eris"
)

// WriteCSV writes rows (a slice of csv-tagged structs) to path, creating
// parent directories as needed.
func WriteCSV(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "tables: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "tables: create %s", path)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return eris.Wrapf(err, "tables: write %s", path)
	}
	return nil
}

// ReadCSV reads path into out, a pointer to a slice of csv-tagged structs.
func ReadCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "tables: open %s", path)
	}
	defer f.Close()

	if err := gocsv.Unmarshal(f, out); err != nil {
		return eris.Wrapf(err, "tables: parse %s", path)
	}
	return nil
}
