// SPDX-License-Identifier: AGPL-3.0-or-later

// Package golden compares rendered text against files under a test
// package's testdata directory.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var update = flag.Bool("update", false, "rewrite golden files with current output")

// Assert checks got against testdata/<name>.golden next to the calling test
// file. With -update the golden file is rewritten instead.
func Assert(t *testing.T, name, got string) {
	t.Helper()
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	dir := filepath.Join(filepath.Dir(filename), "testdata")
	path := goldenPath(t, dir, name)

	if *update {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("mkdir testdata: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			t.Fatalf("write golden %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path) //nolint:gosec // testdata path controlled by test
	if err != nil {
		t.Fatalf("read golden %s: %v (run with -update to create it)", path, err)
	}
	assert.Equal(t, string(want), got, "output differs from %s", path)
}

func goldenPath(t *testing.T, dir, name string) string {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
	}
	return filepath.Join(dir, name+".golden")
}
