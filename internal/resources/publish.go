package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

var ErrAssetMissing = errors.New("asset missing")

// schemaFiles lists the schema documents the harness validates records
// against, relative to both the source resources and the output root.
var schemaFiles = []string{
	filepath.Join(BattlesDir, "Battle.xsd"),
	filepath.Join(BattleSetsDir, "BattleSet.xsd"),
	filepath.Join(BenchmarksDir, "Benchmark.xsd"),
	filepath.Join(BenchmarkSetsDir, "BenchmarkSet.xsd"),
	filepath.Join(AIsDir, "AI.xsd"),
	filepath.Join(EnvironmentsDir, "Environment.xsd"),
	filepath.Join(SchemaTypesDir, "Types.xsd"),
}

// Publisher copies the files generated records refer to into the output
// tree: the environment, the agent definitions, the unit templates and the
// schemas.
type Publisher struct {
	Resources   string // harness resource tree providing units and schemas
	Out         string // output resource root
	Environment string // environment file, published as <board name>.xml
	Agents      string // agent definition directory
	Templates   scenario.UnitTemplates
}

type copyJob struct {
	src, dst string
	tree     bool
}

// Publish copies every asset. All sources are checked before anything is
// copied; each missing one is reported with its path.
func (p *Publisher) Publish(ctx context.Context) error {
	jobs := p.jobs()

	var missing []error
	for _, j := range jobs {
		if _, err := os.Stat(j.src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, fmt.Errorf("%w: %s", ErrAssetMissing, j.src))
				continue
			}
			return err
		}
	}
	if len(missing) > 0 {
		return errors.Join(missing...)
	}

	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if j.tree {
			err = copyTree(j.src, j.dst)
		} else {
			err = copyFile(j.src, j.dst)
		}
		if err != nil {
			return fmt.Errorf("publish %s: %w", j.src, err)
		}
	}
	slog.Info("assets published", "out", p.Out, "files", len(jobs))
	return nil
}

func (p *Publisher) jobs() []copyJob {
	jobs := []copyJob{
		{src: p.Environment, dst: Path(p.Out, EnvironmentsDir, board.NameOf(p.Environment))},
		{src: p.Agents, dst: filepath.Join(p.Out, AIsDir), tree: true},
	}
	for _, id := range p.Templates.IDs() {
		jobs = append(jobs, copyJob{
			src: Path(p.Resources, UnitsDir, id),
			dst: Path(p.Out, UnitsDir, id),
		})
	}
	for _, schema := range schemaFiles {
		jobs = append(jobs, copyJob{
			src: filepath.Join(p.Resources, schema),
			dst: filepath.Join(p.Out, schema),
		})
	}
	return jobs
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
