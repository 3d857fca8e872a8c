// Package extract runs the full chapter-extraction pipeline against one
// extracted EPUB tree: DRM check, package read, structure resolution, text
// extraction, optional subchapter splitting and oversized-chapter chunking,
// and finally writing the plain-text files plus an index.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nut1414/chapterize/internal/epub"
)

// defaultChunkSize is the target character count of one output file when
// oversized-chapter splitting is on.
const defaultChunkSize = 15000

// chunkTolerance lets a chapter exceed the chunk size by 20% before it is
// split, so a slightly-long chapter stays in one file.
const chunkTolerance = 1.2

// Options configures one extraction run.
type Options struct {
	// OutputDir is the directory extracted files are written under. It is
	// created if missing.
	OutputDir string

	// Subchapters enables numbered-subchapter splitting into per-subchapter
	// files.
	Subchapters bool

	// Furigana selects how ruby annotations render in output text.
	Furigana epub.FuriganaMode

	// SplitOversized chunks chapters longer than ChunkSize into parts.
	SplitOversized bool

	// ChunkSize is the target characters per file; 0 means the default.
	ChunkSize int

	// ExportCover copies the detected cover image next to the text output.
	ExportCover bool
}

// Result summarises one completed extraction.
type Result struct {
	// Title is the book title from package metadata, or the source name
	// when the metadata has none.
	Title string

	// Chapters is the number of resolved chapters.
	Chapters int

	// Files is the number of text files written.
	Files int

	// Source names the structure source the chapters came from.
	Source string

	// OutputDir is where the files were written.
	OutputDir string

	// Warnings collects non-fatal problems encountered along the way.
	Warnings []string
}

// Runner executes extractions with shared options and logging.
type Runner struct {
	opts Options
	log  zerolog.Logger
}

// NewRunner returns a Runner with the given options.
func NewRunner(opts Options, log zerolog.Logger) *Runner {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	return &Runner{opts: opts, log: log}
}

// Run extracts one book from an extracted tree rooted at root. sourceName is
// the display name of the input, used for logging and title fallback.
func (r *Runner) Run(root, sourceName string) (*Result, error) {
	log := r.log.With().Str("book", sourceName).Logger()

	fontObfuscation, err := epub.CheckDRM(root)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", sourceName, err)
	}
	if fontObfuscation {
		log.Debug().Msg("font obfuscation detected, contents are readable")
	}

	pkg, err := epub.ReadPackage(root)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", sourceName, err)
	}
	log.Debug().Str("opf", pkg.OPFPath).Str("version", pkg.Version).Int("spine", len(pkg.Spine)).Msg("package read")

	chapters, err := epub.Resolve(pkg)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", sourceName, err)
	}

	res := &Result{
		Title:     pkg.Metadata.Title,
		Chapters:  len(chapters),
		Source:    chapters[0].Source.String(),
		OutputDir: r.opts.OutputDir,
	}
	if res.Title == "" {
		res.Title = sourceName
	}
	log.Info().Int("chapters", len(chapters)).Str("source", res.Source).Msg("structure resolved")

	texts := make([]epub.ChapterText, 0, len(chapters))
	for _, ch := range chapters {
		text, warnings := epub.ExtractChapter(pkg, ch, r.opts.Furigana)
		for _, w := range warnings {
			log.Warn().Err(w).Msg("content skipped")
			res.Warnings = append(res.Warnings, w.Error())
		}

		ct := epub.ChapterText{Chapter: ch, Text: text}
		if r.opts.Subchapters {
			ct.Subchapters = epub.SplitSubchapters(ch.Index, text)
		}
		texts = append(texts, ct)
	}

	records := epub.PlanOutputs(texts, r.opts.Subchapters)
	if r.opts.SplitOversized {
		records = chunkRecords(records, r.opts.ChunkSize)
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("extract %s: create output dir: %w", sourceName, err)
	}

	for _, rec := range records {
		if err := writeRecord(r.opts.OutputDir, rec); err != nil {
			return nil, fmt.Errorf("extract %s: %w", sourceName, err)
		}
		res.Files++
	}

	if err := writeIndex(r.opts.OutputDir, sourceName, res, pkg.Metadata, r.opts.Subchapters, records); err != nil {
		return nil, fmt.Errorf("extract %s: %w", sourceName, err)
	}

	if r.opts.ExportCover {
		if err := exportCover(pkg, r.opts.OutputDir); err != nil {
			log.Warn().Err(err).Msg("cover not exported")
			res.Warnings = append(res.Warnings, fmt.Sprintf("cover not exported: %v", err))
		}
	}

	log.Info().Int("files", res.Files).Str("dir", r.opts.OutputDir).Msg("extraction complete")
	return res, nil
}

// writeRecord materialises one output record, creating any subchapter folder
// and prefixing the text with its title header.
func writeRecord(outputDir string, rec epub.OutputRecord) error {
	target := filepath.Join(outputDir, filepath.FromSlash(rec.RelativeFilename))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create chapter dir: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(rec.Title)
	sb.WriteString("\n\n")
	sb.WriteString(rec.Text)
	sb.WriteString("\n")

	if err := os.WriteFile(target, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rec.RelativeFilename, err)
	}
	return nil
}

// writeIndex writes index.txt: the source name, metadata, chapter count,
// extraction mode, and a numbered list of output files with their titles.
func writeIndex(outputDir, sourceName string, res *Result, md epub.Metadata, subchapters bool, records []epub.OutputRecord) error {
	mode := "single-file"
	if subchapters {
		mode = "subchapter"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n", sourceName)
	fmt.Fprintf(&sb, "Title: %s\n", res.Title)
	if len(md.Authors) > 0 {
		fmt.Fprintf(&sb, "Author: %s\n", strings.Join(md.Authors, ", "))
	}
	if md.Publisher != "" {
		fmt.Fprintf(&sb, "Publisher: %s\n", md.Publisher)
	}
	if md.Date != "" {
		fmt.Fprintf(&sb, "Date: %s\n", md.Date)
	}
	fmt.Fprintf(&sb, "Chapters: %d\n", res.Chapters)
	fmt.Fprintf(&sb, "Mode: %s\n\n", mode)

	for i, rec := range records {
		fmt.Fprintf(&sb, "%d. %s -> %s\n", i+1, rec.Title, rec.RelativeFilename)
	}

	target := filepath.Join(outputDir, "index.txt")
	if err := os.WriteFile(target, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write index.txt: %w", err)
	}
	return nil
}

// exportCover copies the detected cover image into the output directory
// under its original extension.
func exportCover(pkg *epub.Package, outputDir string) error {
	cover, err := epub.FindCover(pkg)
	if err != nil {
		return err
	}

	ext := filepath.Ext(cover.Path)
	if ext == "" {
		ext = extensionForMediaType(cover.MediaType)
	}

	src, err := os.Open(cover.Path)
	if err != nil {
		return fmt.Errorf("open cover: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(outputDir, "cover"+ext))
	if err != nil {
		return fmt.Errorf("create cover: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy cover: %w", err)
	}
	return nil
}

// extensionForMediaType maps the common cover image media types to a file
// extension, defaulting to .img for anything unrecognised.
func extensionForMediaType(mediaType string) string {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	return ".img"
}
