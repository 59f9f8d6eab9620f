package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFile is written to the root of every generated tree.
const ManifestFile = "manifest.yaml"

// Manifest describes one generation run.
type Manifest struct {
	RunID        string              `yaml:"run_id"`
	Created      time.Time           `yaml:"created"`
	Environment  string              `yaml:"environment"`
	Agents       []string            `yaml:"agents"`
	Layouts      int                 `yaml:"layouts"`
	MaxRounds    int                 `yaml:"max_rounds"`
	Repeats      int                 `yaml:"repeats"`
	Compositions []CompositionRecord `yaml:"compositions"`
}

// CompositionRecord lists what one composition produced.
type CompositionRecord struct {
	ID              string   `yaml:"id"`
	Units           int      `yaml:"units"`
	Second          int      `yaml:"second"`
	ForceRatio      float64  `yaml:"force_ratio"`
	BattleshipRatio float64  `yaml:"bs_ratio"`
	BattleSet       string   `yaml:"battle_set"`
	Battles         []string `yaml:"battles"`
	BenchmarkSet    string   `yaml:"benchmark_set"`
	Benchmarks      []string `yaml:"benchmarks,omitempty"`
}

// Counts returns the number of battles and benchmarks the run wrote.
func (m Manifest) Counts() (battles, benchmarks int) {
	for _, c := range m.Compositions {
		battles += len(c.Battles)
		benchmarks += len(c.Benchmarks)
	}
	return battles, benchmarks
}

// WriteManifest stores m under root.
func WriteManifest(root string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ManifestFile), data, 0o644)
}

// ReadManifest loads the manifest stored under root.
func ReadManifest(root string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
