package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/spinsim/internal/spin"
)

type ExportData struct {
	Run     RunMetadata   `json:"run"`
	Signals []spin.Signal `json:"signals,omitempty"`
}

// ExportJSON writes a run and its signals as one JSON document. A path of
// "-" writes to stdout.
func ExportJSON(path string, meta *RunMetadata, signals []spin.Signal) error {
	return export(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ExportData{Run: *meta, Signals: signals})
	})
}

// ExportCSV writes the signals in the signal.csv layout.
func ExportCSV(path string, signals []spin.Signal) error {
	return export(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(signalHeader); err != nil {
			return err
		}
		for _, sig := range signals {
			if err := cw.Write(signalRow(sig)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func export(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
