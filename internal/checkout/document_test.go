package checkout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`attachment; filename="entrada_12.pdf"`, "entrada_12.pdf"},
		{`attachment; filename=entrada_12.pdf`, "entrada_12.pdf"},
		{`attachment; filename=entrada 12.pdf`, "entrada 12.pdf"},
		{`inline; filename="../../etc/passwd"`, "passwd"},
		{`attachment`, DefaultDocumentName},
		{``, DefaultDocumentName},
		{`attachment; filename=""`, DefaultDocumentName},
	}
	for _, tt := range tests {
		if got := DocumentFilename(tt.in); got != tt.want {
			t.Fatalf("DocumentFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileSinkSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tickets")
	var opened string
	sink := NewFileSink(dir, true)
	sink.opener = func(p string) error { opened = p; return nil }

	path, err := sink.Save(context.Background(), "entrada_1.pdf", model.Document{Body: []byte("%PDF-1.3")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "entrada_1.pdf") {
		t.Fatalf("path = %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF-1.3" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}
	if opened != path {
		t.Fatalf("opened %q, want %q", opened, path)
	}
}

func TestFileSinkOpenFailureKeepsFile(t *testing.T) {
	sink := NewFileSink(t.TempDir(), true)
	sink.opener = func(string) error { return errors.New("no viewer") }

	path, err := sink.Save(context.Background(), "x.pdf", model.Document{Body: []byte("x")})
	if err == nil {
		t.Fatal("Save() did not report the open failure")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("file missing after open failure: %v", statErr)
	}
}
