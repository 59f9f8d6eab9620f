package resources

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Writer stores records as XML documents under a resource root.
// It is safe for concurrent use as long as no two records share an id.
type Writer struct {
	root      string
	templates scenario.UnitTemplates

	files atomic.Int64
	bytes atomic.Int64
}

// NewWriter creates a writer rooted at root.
func NewWriter(root string, templates scenario.UnitTemplates) *Writer {
	return &Writer{root: root, templates: templates}
}

// Root returns the resource root the writer stores under.
func (w *Writer) Root() string {
	return w.root
}

// Stats returns the number of documents and bytes written so far.
func (w *Writer) Stats() (files, bytes int64) {
	return w.files.Load(), w.bytes.Load()
}

func (w *Writer) WriteBattle(ctx context.Context, b scenario.Battle) error {
	return w.write(ctx, BattlesDir, b.ID, newBattleDoc(b, w.templates))
}

func (w *Writer) WriteBattleSet(ctx context.Context, s scenario.BattleSet) error {
	return w.write(ctx, BattleSetsDir, s.ID, battleSetDoc{Battles: refs(s.Battles)})
}

func (w *Writer) WriteBenchmark(ctx context.Context, b scenario.Benchmark) error {
	return w.write(ctx, BenchmarksDir, b.ID, newBenchmarkDoc(b))
}

func (w *Writer) WriteBenchmarkSet(ctx context.Context, s scenario.BenchmarkSet) error {
	return w.write(ctx, BenchmarkSetsDir, s.ID, benchmarkSetDoc{Benchmarks: refs(s.Benchmarks)})
}

func (w *Writer) write(ctx context.Context, dir, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := writeDocument(Path(w.root, dir, id), doc)
	if err != nil {
		return err
	}
	w.files.Add(1)
	w.bytes.Add(int64(n))
	return nil
}

// Path returns the file holding record id in dir.
func Path(root, dir, id string) string {
	return filepath.Join(root, dir, id+Ext)
}

// writeDocument marshals doc with two-space indentation behind an XML header
// and writes it in one piece, creating parent directories as needed.
func writeDocument(path string, doc any) (int, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data := make([]byte, 0, len(xml.Header)+len(body)+1)
	data = append(data, xml.Header...)
	data = append(data, body...)
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return len(data), nil
}
