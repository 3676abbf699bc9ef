// SPDX-License-Identifier: AGPL-3.0-or-later

package tengomap

import (
	"fmt"
	"os"

	"github.com/leynos/concordat-vale/internal/fsutil"
	"github.com/leynos/concordat-vale/internal/ordered"
)

// UpdateFile applies UpdateMap to the script at path. The file is written
// once, only when its content changes, and never when the merge fails.
func UpdateFile(path, mapName string, entries *ordered.Map[Value]) (MapUpdateResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return MapUpdateResult{}, fmt.Errorf("missing Tengo script %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return MapUpdateResult{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MapUpdateResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	out, result, err := UpdateMap(string(data), mapName, entries)
	if err != nil {
		return MapUpdateResult{}, fmt.Errorf("%s: %w", path, err)
	}
	if !result.Rewritten {
		return result, nil
	}
	if err := fsutil.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return MapUpdateResult{}, err
	}
	return result, nil
}
