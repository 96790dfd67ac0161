package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPreservesOrder(t *testing.T) {
	src := "Subject,Resolution,Owner\n" +
		"Printer offline,Power cycle the printer.,alex\n" +
		"VPN access request,Granted VPN group membership.,sam\n" +
		"\"Password, expired\",\"Reset via portal\",kim\n"
	c, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c) != 3 {
		t.Fatalf("expected 3 records, got %d", len(c))
	}
	wantSubjects := []string{"Printer offline", "VPN access request", "Password, expired"}
	for i, want := range wantSubjects {
		if c[i].Subject != want {
			t.Fatalf("record %d subject = %q, want %q", i, c[i].Subject, want)
		}
	}
	if c[2].Resolution != "Reset via portal" {
		t.Fatalf("unexpected resolution: %q", c[2].Resolution)
	}
}

func TestLoadColumnOrderIndependent(t *testing.T) {
	c, err := Load(strings.NewReader("Resolution,Subject\nClear tray.,Printer jam\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c[0].Subject != "Printer jam" || c[0].Resolution != "Clear tray." {
		t.Fatalf("unexpected record: %+v", c[0])
	}
}

func TestLoadMissingResolutionColumn(t *testing.T) {
	_, err := Load(strings.NewReader("Subject,Notes\nPrinter jam,n/a\n"))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != ResolutionColumn {
		t.Fatalf("unexpected missing columns: %v", schemaErr.Missing)
	}
}

func TestLoadColumnNamesAreCaseSensitive(t *testing.T) {
	_, err := Load(strings.NewReader("subject,resolution\na,b\n"))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for lower-case headers, got %v", err)
	}
	if len(schemaErr.Missing) != 2 {
		t.Fatalf("expected both columns missing, got %v", schemaErr.Missing)
	}
}

func TestLoadEmptySource(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for empty source, got %v", err)
	}
}

func TestLoadPassesThroughEmptyCells(t *testing.T) {
	c, err := Load(strings.NewReader("Subject,Resolution\n,\nShort row\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c) != 2 {
		t.Fatalf("expected garbage rows to be kept, got %d", len(c))
	}
	if c[0].Subject != "" || c[1].Resolution != "" {
		t.Fatalf("unexpected records: %+v", c)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	c, err := Load(strings.NewReader("\ufeffSubject,Resolution\nA,B\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c) != 1 {
		t.Fatalf("expected 1 record, got %d", len(c))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolved_tickets.csv")
	if err := os.WriteFile(path, []byte("Subject,Resolution\nPrinter jam,Clear paper tray.\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(c) != 1 || c[0].Resolution != "Clear paper tray." {
		t.Fatalf("unexpected corpus: %+v", c)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadFileSchemaErrorIsWrapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Subject\nPrinter jam\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	_, err := LoadFile(path)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected wrapped SchemaError, got %v", err)
	}
}
