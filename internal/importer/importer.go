package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duesbook/duesbook/internal/model"
)

// Importer reads one kind of CSV and writes its rows to the ledger. Rows
// succeed or fail independently; the error return is reserved for input
// that cannot be read at all.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (model.BatchResult, error)
	Kind() string
}

// Registry holds importers by kind.
type Registry struct {
	importers map[string]Importer
}

// FileInfo describes a CSV file waiting in the import inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty importer registry.
func NewRegistry() *Registry {
	return &Registry{importers: make(map[string]Importer)}
}

// Register adds an importer. Panics on duplicate kind.
func (r *Registry) Register(imp Importer) {
	key := strings.ToLower(imp.Kind())
	if _, ok := r.importers[key]; ok {
		panic("duplicate importer kind: " + key)
	}
	r.importers[key] = imp
}

// Get returns the importer for kind, or nil.
func (r *Registry) Get(kind string) Importer {
	return r.importers[strings.ToLower(kind)]
}

// Kinds lists the registered kinds in order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.importers))
	for k := range r.importers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// processedDir is the inbox subdirectory for imported files.
const processedDir = "processed"

// Scan returns the CSV files directly inside inboxDir, sorted by name.
// A missing inbox is empty.
func Scan(inboxDir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(inboxDir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from the inbox to <inbox>/processed/.
func MarkProcessed(inboxDir, fileName string) error {
	src := filepath.Join(inboxDir, fileName)
	dstDir := filepath.Join(inboxDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// ImportFile opens path and runs imp over it.
func ImportFile(ctx context.Context, imp Importer, path string) (model.BatchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.BatchResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return imp.Import(ctx, f)
}
