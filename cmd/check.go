// ABOUTME: Check command for the materialhub CLI
// ABOUTME: Validates local files against upload limits before sending, for scripts and CI

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/media"
)

var maxSizeMB int

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Check files against upload limits",
	Long: `Check that files have an accepted extension and fit the size limit,
without contacting the backend.

Exit codes:
  0 - All files pass
  1 - One or more files fail a check
  2 - Error (missing file, invalid input)`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runCheck(ctx, w, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&maxSizeMB, "max-size", media.MaxFileSize>>20, "Size limit in MB (cannot exceed the backend limit)")
}

// checkResult is the verdict for one file
type checkResult struct {
	path     string
	size     int64
	fileType string
	problems []string
}

func (r checkResult) passed() bool { return len(r.problems) == 0 }

// runCheck inspects every path and returns the exit code
func runCheck(_ context.Context, w io.Writer, paths []string) int {
	if err := validateMaxSize(maxSizeMB); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	results := make([]checkResult, 0, len(paths))
	for _, p := range paths {
		info, err := media.Inspect(p)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		results = append(results, evaluate(info, int64(maxSizeMB)<<20))
	}

	if IsJSONOutput() {
		printJSON(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	if _, failed := countResults(results); failed > 0 {
		return exitRejected
	}
	return exitOK
}

func validateMaxSize(mb int) error {
	if mb <= 0 || int64(mb)<<20 > media.MaxFileSize {
		return fmt.Errorf("--max-size must be between 1 and %d", media.MaxFileSize>>20)
	}
	return nil
}

// evaluate applies the media warnings plus a stricter local size limit
func evaluate(info media.Info, limit int64) checkResult {
	r := checkResult{path: info.Path, size: info.Size, fileType: info.FileType, problems: info.Warnings}
	if info.Size > limit && info.Size <= media.MaxFileSize {
		r.problems = append(r.problems, fmt.Sprintf("file is %s, over the %s limit", media.HumanSize(info.Size), media.HumanSize(limit)))
	}
	return r
}

// countResults returns the count of passed and failed files
func countResults(results []checkResult) (passed, failed int) {
	for _, r := range results {
		if r.passed() {
			passed++
		} else {
			failed++
		}
	}
	return
}

func formatCheckHuman(results []checkResult) string {
	var b strings.Builder
	for _, r := range results {
		if r.passed() {
			fmt.Fprintf(&b, "✓ %s: %s, %s\n", r.path, r.fileType, media.HumanSize(r.size))
			continue
		}
		fmt.Fprintf(&b, "✗ %s: %s\n", r.path, strings.Join(r.problems, "; "))
	}

	passed, failed := countResults(results)
	if failed > 0 {
		fmt.Fprintf(&b, "\nFAILED: %d file(s) would be rejected", failed)
	} else {
		fmt.Fprintf(&b, "\nPASSED: All %d file(s) can be uploaded", passed)
	}
	return b.String()
}

func formatCheckJSON(results []checkResult) map[string]any {
	_, failed := countResults(results)

	files := make([]map[string]any, len(results))
	for i, r := range results {
		files[i] = map[string]any{
			"path":      r.path,
			"size":      r.size,
			"file_type": r.fileType,
			"passed":    r.passed(),
			"problems":  r.problems,
		}
	}

	status := "passed"
	if failed > 0 {
		status = "failed"
	}
	return map[string]any{"status": status, "files": files}
}
