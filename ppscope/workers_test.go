package ppscope

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunWorkers tests the worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunWorkers(t *testing.T) {
	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			cache := NewCache()

			expected := generateTestFiles(t, tmpDir, tc.fileCount)

			scanner := newScanner(scannerConfig{
				root:     tmpDir,
				maxBytes: 2 * 1024 * 1024,
			})
			files, err := scanner.collect()
			require.NoError(t, err)
			require.Len(t, files, tc.fileCount)

			resolve := func(job FileJob) Language { return Get("java") }
			results, err := runWorkers(context.Background(), files, tc.jobs, resolve, cache, nil, conditionOf)
			require.NoError(t, err)

			// results keep the order of files
			require.Equal(t, expected, results)
			require.Equal(t, tc.fileCount, cache.Len())
		})
	}
}

func TestRunWorkersSkipsUnreadableFiles(t *testing.T) {
	tmpDir := t.TempDir()
	generateTestFiles(t, tmpDir, 3)

	files := []FileJob{
		{AbsPath: filepath.Join(tmpDir, "File0.java"), DisplayPath: "File0.java"},
		{AbsPath: filepath.Join(tmpDir, "missing.java"), DisplayPath: "missing.java"},
		{AbsPath: filepath.Join(tmpDir, "File2.java"), DisplayPath: "File2.java"},
	}
	resolve := func(job FileJob) Language { return Get("java") }
	results, err := runWorkers(context.Background(), files, 2, resolve, nil, nil, conditionOf)
	require.NoError(t, err)
	require.Equal(t, []string{"MC >= 1.0", "MC >= 1.2"}, results)
}

func TestRunWorkersCanceled(t *testing.T) {
	tmpDir := t.TempDir()
	generateTestFiles(t, tmpDir, 20)
	files, err := newScanner(scannerConfig{root: tmpDir}).collect()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resolve := func(job FileJob) Language { return Get("java") }
	_, err = runWorkers(ctx, files, 4, resolve, nil, nil, conditionOf)
	require.ErrorIs(t, err, context.Canceled)
}

// generateTestFiles creates N Java files, each with one uniquely conditioned block.
// Returns the expected conditions in file order.
func generateTestFiles(t *testing.T, dir string, count int) []string {
	t.Helper()

	expected := []string{}
	for i := range count {
		cond := fmt.Sprintf("MC >= 1.%d", i)
		fileName := fmt.Sprintf("File%d.java", i)
		filePath := filepath.Join(dir, fileName)

		content := fmt.Sprintf(`class File%d {
    //#if %s
    int x;
    //#endif
}
`, i, cond)

		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err)

		expected = append(expected, cond)
	}

	// collect sorts by display path, so File10 comes before File2
	sortByFileName(expected)
	return expected
}

func sortByFileName(conds []string) {
	names := make(map[string]string, len(conds))
	keys := make([]string, 0, len(conds))
	for i, c := range conds {
		name := fmt.Sprintf("File%d.java", i)
		names[name] = c
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for i, k := range keys {
		conds[i] = names[k]
	}
}

// conditionOf is a process function returning the condition of the first block.
func conditionOf(_ FileJob, a *Analysis) string {
	return a.Scan.Occurrences[a.Matching.Blocks[0].Opener].Directive.Condition
}
