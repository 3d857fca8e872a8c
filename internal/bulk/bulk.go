// Package bulk processes a directory of EPUB containers: it discovers the
// books, extracts each one in isolation, and reports a per-book summary. A
// failing book never aborts the run.
package bulk

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nut1414/chapterize/internal/archive"
	"github.com/nut1414/chapterize/internal/extract"
)

// Options configures one bulk run.
type Options struct {
	// InputDir is the directory scanned for .epub containers.
	InputDir string

	// OutputDir is the root under which each book gets its own directory,
	// mirroring the input's relative layout.
	OutputDir string

	// Recursive scans subdirectories as well.
	Recursive bool

	// Extract carries the per-book extraction options. Its OutputDir field
	// is overridden per book.
	Extract extract.Options
}

// BookResult records the outcome for one discovered book.
type BookResult struct {
	// Path is the container path relative to the input directory.
	Path string

	// Title is the extracted book title, empty on failure.
	Title string

	// Chapters and Files are the extraction counts, zero on failure.
	Chapters int
	Files    int

	// Err is the failure, nil on success.
	Err error
}

// Summary aggregates a bulk run.
type Summary struct {
	Results   []BookResult
	Succeeded int
	Failed    int
}

// Discover returns the .epub containers under dir, relative to dir, sorted
// by walk order. Dotfiles and dot-directories are skipped; subdirectories
// are only entered when recursive is set.
func Discover(dir string, recursive bool) ([]string, error) {
	var books []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".epub") {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			books = append(books, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk: scan %s: %w", dir, err)
	}

	return books, nil
}

// Run extracts every discovered book. Each book writes into its own output
// directory named after the container stem, preserving the input's relative
// directory structure.
func Run(opts Options, log zerolog.Logger) (*Summary, error) {
	books, err := Discover(opts.InputDir, opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("bulk: no .epub files under %s", opts.InputDir)
	}
	log.Info().Int("books", len(books)).Str("dir", opts.InputDir).Msg("bulk run starting")

	summary := &Summary{}
	for _, rel := range books {
		res := runOne(opts, rel, log)
		if res.Err != nil {
			log.Error().Err(res.Err).Str("book", rel).Msg("extraction failed")
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, res)
	}

	return summary, nil
}

// runOne extracts a single container, isolating any failure into the result.
func runOne(opts Options, rel string, log zerolog.Logger) BookResult {
	result := BookResult{Path: rel}

	src, err := archive.Prepare(filepath.Join(opts.InputDir, rel))
	if err != nil {
		result.Err = err
		return result
	}
	defer src.Cleanup()

	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	bookOpts := opts.Extract
	bookOpts.OutputDir = filepath.Join(opts.OutputDir, filepath.Dir(rel), stem)

	res, err := extract.NewRunner(bookOpts, log).Run(src.Root, src.Name)
	if err != nil {
		result.Err = err
		return result
	}

	result.Title = res.Title
	result.Chapters = res.Chapters
	result.Files = res.Files
	return result
}

// WriteSummaryTable renders the per-book outcomes as a table on w.
func (s *Summary) WriteSummaryTable(w io.Writer) {
	headers := []string{"Book", "Title", "Chapters", "Files", "Status"}
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		rows = append(rows, []string{
			r.Path,
			r.Title,
			fmt.Sprintf("%d", r.Chapters),
			fmt.Sprintf("%d", r.Files),
			status,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	fmt.Fprintln(w, renderTable(headers, rows, aligns))
	fmt.Fprintf(w, "%d succeeded, %d failed\n", s.Succeeded, s.Failed)
}
