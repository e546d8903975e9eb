package core

import (
	"errors"
	"testing"
	"unicode/utf16"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name    string
		want    fileKind
		wantErr bool
	}{
		{"catalogue.csv", kindText, false},
		{"CATALOGUE.CSV", kindText, false},
		{"export.txt", kindText, false},
		{"livres.xlsx", kindWorkbook, false},
		{"livres.xls", 0, true},
		{"noext", 0, true},
	}

	for _, tt := range tests {
		got, err := kindOf(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("kindOf(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFile) {
			t.Errorf("kindOf(%q) error = %v, want ErrUnsupportedFile", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("kindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func utf16LE(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("No,Titre\n1,A"), "No,Titre\n1,A"},
		{"utf8 bom", []byte("\xEF\xBB\xBFNo,Titre\n1,A"), "No,Titre\n1,A"},
		{"invalid byte", []byte("No,Titre\n1,\xffA"), "No,Titre\n1,\ufffdA"},
		{"accents kept", []byte("Titre\nL'Étranger"), "Titre\nL'Étranger"},
		{"utf16 with bom", utf16LE("No,Titre\n1,Éléphant"), "No,Titre\n1,Éléphant"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeText(tt.in)
			if err != nil {
				t.Fatalf("decodeText: %v", err)
			}
			if got != tt.want {
				t.Errorf("decodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkbookRows_NotAWorkbook(t *testing.T) {
	_, err := workbookRows([]byte("No,Titre\n1,A"))
	if !errors.Is(err, ErrUnreadableFile) {
		t.Errorf("error = %v, want ErrUnreadableFile", err)
	}
}
