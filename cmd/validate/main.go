// Command validate checks a label report against the radar directory it was
// produced from: header and values, completeness, ordering and uniqueness.
//
// Usage:
//
//	go run ./cmd/validate -data-dir ~/weathergenerator/data -report rainy_labels.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/report"
	"github.com/couchcryptid/radar-rain-labeler/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory of radar files the report was built from")
	reportPath := flag.String("report", "rainy_labels.csv", "path to the CSV label report")
	ext := flag.String("ext", ".h5", "radar file extension")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *reportPath, *ext); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, reportPath, ext string) int {
	fmt.Println("=== Rain Label Report Validation ===")
	fmt.Println()

	paths, err := pipeline.NewDirSource(dataDir, ext).List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list radar files: %v\n", err)
		return 1
	}
	files := make([]string, len(paths))
	for i, p := range paths {
		files[i] = filepath.Base(p)
	}

	rows, err := report.ReadFile(reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read report: %v\n", err)
		return 1
	}

	phases := validate(files, rows)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	rainy, dry, unknown := countLabels(rows)
	fmt.Println()
	fmt.Printf("Files: %d radar, %d report rows (%d rainy, %d dry, %d unknown)\n",
		len(files), len(rows), rainy, dry, unknown)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(files []string, rows []report.Row) []*phase {
	return []*phase{
		validateCompleteness(files, rows),
		validateUniqueness(rows),
		validateOrder(rows),
	}
}

// validateCompleteness checks for exactly one row per radar file.
func validateCompleteness(files []string, rows []report.Row) *phase {
	p := &phase{name: "Completeness (one row per radar file)"}

	inReport := make(map[string]bool, len(rows))
	for _, r := range rows {
		inReport[r.Filename] = true
	}
	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f] = true
		if !inReport[f] {
			p.errorf("%s: missing from report", f)
		}
	}
	for _, r := range rows {
		if !onDisk[r.Filename] {
			p.errorf("%s: in report but not in data dir", r.Filename)
		}
	}
	return p
}

func validateUniqueness(rows []report.Row) *phase {
	p := &phase{name: "Uniqueness"}
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		if first, ok := seen[r.Filename]; ok {
			p.errorf("%s: rows %d and %d", r.Filename, first+2, i+2)
			continue
		}
		seen[r.Filename] = i
	}
	return p
}

func validateOrder(rows []report.Row) *phase {
	p := &phase{name: "Sort order (ascending filename)"}
	for i := 1; i < len(rows); i++ {
		if rows[i].Filename < rows[i-1].Filename {
			p.errorf("row %d: %s sorts before %s", i+2, rows[i].Filename, rows[i-1].Filename)
		}
	}
	return p
}

func countLabels(rows []report.Row) (rainy, dry, unknown int) {
	for _, r := range rows {
		switch {
		case r.Rainy == nil:
			unknown++
		case *r.Rainy:
			rainy++
		default:
			dry++
		}
	}
	return rainy, dry, unknown
}
