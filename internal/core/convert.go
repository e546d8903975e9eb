package core

// convert.go turns uploaded bytes into something the parser can read.
//
// Text uploads are decoded as UTF-8 unless a byte order mark says
// otherwise (Excel's "Unicode text" export is UTF-16LE with a BOM). The
// BOM is dropped and invalid sequences become U+FFFD. Workbooks are read
// from their first sheet.

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type fileKind int

const (
	kindText fileKind = iota
	kindWorkbook
)

// kindOf picks the decoder from the file extension.
func kindOf(fileName string) (fileKind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return kindText, nil
	case ".xlsx":
		return kindWorkbook, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFile, fileName)
	}
}

// decodeText strips a BOM and sanitizes the encoding.
func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return string(out), nil
}

// workbookRows returns the trimmed, non-blank rows of the first sheet.
func workbookRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnreadableFile, sheets[0], err)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		blank := true
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				blank = false
			}
		}
		if !blank {
			out = append(out, cells)
		}
	}
	return out, nil
}
