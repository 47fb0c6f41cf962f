package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elomagic/dtreport/internal/contract"
)

// writeWithFile renders the whole output into memory, then moves it into place.
// An empty outputFile means stdout. A render or file failure wraps
// contract.ErrSerialization and leaves no partial file behind.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	var buf bytes.Buffer
	if err := writer(&buf); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrSerialization, err)
	}

	if outputFile == "" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("%w: write stdout: %w", contract.ErrSerialization, err)
		}
		return nil
	}

	if err := writeFileAtomic(outputFile, buf.Bytes()); err != nil {
		return err
	}
	contract.LogInfo("%s to %s", successMsg, outputFile)
	return nil
}

// writeFileAtomic creates missing parent directories, writes data to a temporary
// file next to path and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %w", contract.ErrSerialization, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", contract.ErrSerialization, path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write %s: %w", contract.ErrSerialization, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close %s: %w", contract.ErrSerialization, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod %s: %w", contract.ErrSerialization, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: rename into %s: %w", contract.ErrSerialization, path, err)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows. Lines end with "\n".
func writeCSVWithHeader(w io.Writer, comma rune, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = comma

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// FormatDecimal renders v with exactly two fraction digits and the given decimal separator.
func FormatDecimal(v float64, separator rune) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if separator == '.' {
		return s
	}
	return strings.Replace(s, ".", string(separator), 1)
}
