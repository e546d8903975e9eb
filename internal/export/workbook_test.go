package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/csvimport"
)

func TestContentsWorkbook(t *testing.T) {
	contents := []api.Content{
		{ID: "c1", No: "1", Titre: "Une si longue lettre", Auteur: "Mariama Bâ", Description: "Roman épistolaire"},
		{ID: "c2", Titre: "L'Aventure ambiguë", Auteur: "Cheikh Hamidou Kane"},
	}

	var buf bytes.Buffer
	if err := ContentsWorkbook(&buf, contents); err != nil {
		t.Fatalf("ContentsWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != ContentsSheet {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows(ContentsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// The export reads back as an import.
	records := csvimport.RecordsFromRows(rows)
	if len(records) != 2 {
		t.Fatalf("re-import gave %d records, want 2", len(records))
	}
	if *records[0].Auteur != "Mariama Bâ" || *records[0].Description != "Roman épistolaire" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].No != nil || *records[1].Titre != "L'Aventure ambiguë" {
		t.Errorf("second record: no=%v titre=%v", records[1].No, records[1].Titre)
	}
}

func TestContentsWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := ContentsWorkbook(&buf, nil); err != nil {
		t.Fatalf("ContentsWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(ContentsSheet)
	if len(rows) != 1 || rows[0][0] != csvimport.ColNo {
		t.Errorf("rows = %v, want header only", rows)
	}
}
