package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Agents returns the agent roster: one id per XML definition in dir, in file
// name order. The id is the file name without its extension.
func Agents(dir string) ([]string, error) {
	agents, err := listIDs(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: agent directory %s", ErrAssetMissing, dir)
		}
		return nil, fmt.Errorf("read agent directory: %w", err)
	}
	return agents, nil
}

// ListIDs returns the ids of the records stored in one directory of the tree.
// A missing directory holds no records.
func ListIDs(root, dir string) ([]string, error) {
	out, err := listIDs(filepath.Join(root, dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

func listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), Ext))
	}
	return out, nil
}
