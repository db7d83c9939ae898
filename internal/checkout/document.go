package checkout

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// DocumentFilename derives the file name from a Content-Disposition
// header value, falling back to DefaultDocumentName.
func DocumentFilename(disposition string) string {
	if disposition == "" {
		return DefaultDocumentName
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := cleanFilename(params["filename"]); name != "" {
			return name
		}
	}
	// Lenient path for headers mime rejects, e.g. unquoted spaces.
	if i := strings.Index(disposition, "filename="); i >= 0 {
		raw := disposition[i+len("filename="):]
		if j := strings.Index(raw, ";"); j >= 0 {
			raw = raw[:j]
		}
		if name := cleanFilename(strings.ReplaceAll(raw, `"`, "")); name != "" {
			return name
		}
	}
	return DefaultDocumentName
}

func cleanFilename(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// FileSink writes issued documents into Dir and, when Open is set,
// hands them to the operating system viewer.
type FileSink struct {
	Dir  string
	Open bool

	// opener is swapped in tests.
	opener func(path string) error
}

// NewFileSink returns a sink writing under dir.
func NewFileSink(dir string, open bool) *FileSink {
	return &FileSink{Dir: dir, Open: open, opener: openWithSystem}
}

// Save writes doc as name inside the sink directory.
func (s *FileSink) Save(ctx context.Context, name string, doc model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if s.Open && s.opener != nil {
		if err := s.opener(path); err != nil {
			return path, fmt.Errorf("open document: %w", err)
		}
	}
	return path, nil
}

func openWithSystem(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
