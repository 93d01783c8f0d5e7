package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Results"

// WriteLines writes each line followed by a newline, verbatim.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ToFile saves the displayed result lines to path. A .xlsx path produces a
// single-column spreadsheet; any other extension gets plain text lines.
func ToFile(path string, lines []string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("export: empty file name")
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return toSpreadsheet(path, lines)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	if err := WriteLines(f, lines); err != nil {
		f.Close()
		return errors.Wrapf(err, "export %s", path)
	}
	return errors.Wrapf(f.Close(), "export %s", path)
}

func toSpreadsheet(path string, lines []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "export")
	}
	if err := f.SetColWidth(sheetName, "A", "A", 100); err != nil {
		return errors.Wrap(err, "export")
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "export")
		}
		if err := f.SetCellStr(sheetName, cell, line); err != nil {
			return errors.Wrap(err, "export")
		}
	}

	return errors.Wrapf(f.SaveAs(path), "export %s", path)
}
