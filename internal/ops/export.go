package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/render"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID        string
	Workspace string
	Name      string
	Path      string // optional, default: ~/.deckhand/exports/<name>-<timestamp>.html
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	ID         string `json:"id"`
	Slides     int    `json:"slides"`
	ExportedAt int64  `json:"exported_at"`
}

var standaloneTemplate = template.Must(template.New("deck").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="deckhand">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #1e1e1e; font-family: system-ui, sans-serif; }
.slide { box-sizing: border-box; width: 960px; min-height: 540px; margin: 24px auto; padding: 48px 64px; background: #fff; color: #222; }
.slide h1 { font-size: 2.6em; }
.slide img { max-width: 100%; max-height: 420px; }
.table-wrapper { overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 10px; }
.task-list-item { list-style: none; }
@media print { body { background: none; } .slide { margin: 0; page-break-after: always; } }
</style>
</head>
<body>
{{range $i, $s := .Slides}}<section class="slide" id="slide-{{inc $i}}">
{{$s}}
</section>
{{end}}</body>
</html>
`))

type standalonePage struct {
	Title  string
	Slides []template.HTML
}

// Export writes a stored deck to a standalone HTML file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("export")
	}

	fetched, err := Fetch(ctx, database, FetchInput{ID: input.ID, Workspace: input.Workspace, Name: input.Name})
	if err != nil {
		return nil, err
	}
	d := &fetched.Deck

	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(d, now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default): deck names end up in default paths
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	page, err := renderStandalone(d)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, errors.NewCancelled("export")
	}

	if err := writeFileAtomic(exportPath, page); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		ID:         d.ID,
		Slides:     d.SlideCount,
		ExportedAt: now.Unix(),
	}, nil
}

// renderStandalone renders d as a complete HTML document. Slides go through
// the allow-list again since a deck may have been stored unsanitized.
func renderStandalone(d *deck.Deck) ([]byte, error) {
	title := d.DisplayName()
	if d.Title != nil && *d.Title != "" {
		title = *d.Title
	}

	page := standalonePage{Title: title}
	for _, s := range deck.SplitSlides(d.HTML) {
		page.Slides = append(page.Slides, template.HTML(render.Sanitize(s))) //nolint:gosec
	}

	var buf bytes.Buffer
	if err := standaloneTemplate.Execute(&buf, page); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to render export: %w", err))
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file beside path, then renames it into
// place so an existing file is preserved on failure.
func writeFileAtomic(path string, data []byte) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createExportTemp(tempPath)
	if err != nil {
		if _, ok := err.(*errors.DeckError); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path must not be a symlink")
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely rather
	// than delete-then-rename, which could lose the original.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath generates the default export path.
// Format: ~/.deckhand/exports/<name or id>-<timestamp>.html
func defaultExportPath(d *deck.Deck, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	name := d.ID
	if d.NameNorm != nil {
		// Sanitize the normalized name to prevent path traversal via deck names
		name = SanitizeForFilename(*d.NameNorm)
	}

	filename := fmt.Sprintf("%s-%s.html", name, now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
