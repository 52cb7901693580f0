package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cafeteria-sim/cafeteria-sim/sim/cafeteria"
)

// csvHeader is the column layout of the result file.
var csvHeader = []string{"Customers", "Throughput", "AvgWait", "PeakQueue", "Time"}

// WriteCSV writes a header and a single row summarizing one run to path.
func WriteCSV(path string, s cafeteria.Statistics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeResults(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeResults(w io.Writer, s cafeteria.Statistics) error {
	cw := csv.NewWriter(w)
	row := []string{
		strconv.Itoa(s.CustomersServed),
		strconv.FormatFloat(s.Throughput, 'f', 2, 64),
		strconv.FormatFloat(s.AverageWait, 'f', 2, 64),
		strconv.Itoa(s.PeakQueueLength),
		strconv.FormatFloat(s.CurrentTime, 'f', 2, 64),
	}
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
