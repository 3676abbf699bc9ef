package makefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(lines ...string) string { return strings.Join(lines, "\n") + "\n" }

func TestUpdate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		steps []string
		want  string
	}{
		{
			name:  "empty file",
			input: "",
			want: join(
				".PHONY: vale",
				"",
				"VALE ?= vale",
				"",
				"vale: ## Check prose",
				"\t$(VALE) sync",
				"\t$(VALE) --no-global --output line .",
			),
		},
		{
			name: "replaces old target and extends phony",
			input: join(
				".PHONY: test",
				"",
				"vale: ## old target",
				"\t@echo outdated",
				"",
				"lint:",
				"\t@echo lint",
			),
			want: join(
				"VALE ?= vale",
				"",
				".PHONY: test vale",
				"",
				"vale: ## Check prose",
				"\t$(VALE) sync",
				"\t$(VALE) --no-global --output line .",
				"lint:",
				"\t@echo lint",
			),
		},
		{
			name: "keeps existing variable and phony entry",
			input: join(
				"VALE := /opt/vale",
				".PHONY: vale lint",
				"lint:",
				"\t@echo lint",
			),
			steps: []string{"stilyagi update-tengo-map --source a --dest b --type true"},
			want: join(
				"VALE := /opt/vale",
				".PHONY: vale lint",
				"lint:",
				"\t@echo lint",
				"",
				"vale: ## Check prose",
				"\t$(VALE) sync",
				"\tstilyagi update-tengo-map --source a --dest b --type true",
				"\t$(VALE) --no-global --output line .",
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Update(tt.input, tt.steps)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Update(got, tt.steps), "second run must be a no-op")
		})
	}
}

func TestUpdate_SimilarTargetNameIsKept(t *testing.T) {
	got := Update(join(".PHONY: all", "valedictory:", "\t@true"), nil)
	assert.Contains(t, got, "valedictory:\n\t@true\n\nvale: ## Check prose")
}

func TestUpdateFile_CreatesAndRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Makefile")

	require.NoError(t, UpdateFile(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "VALE ?= vale")

	require.NoError(t, UpdateFile(path, []string{"echo step"}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "vale: ## Check prose"))
	assert.Contains(t, string(data), "\techo step\n")
}
