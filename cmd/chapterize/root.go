package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nut1414/chapterize/internal/archive"
	"github.com/nut1414/chapterize/internal/bulk"
	"github.com/nut1414/chapterize/internal/config"
	"github.com/nut1414/chapterize/internal/epub"
	"github.com/nut1414/chapterize/internal/extract"
	"github.com/nut1414/chapterize/internal/logging"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag     string
		outputFlag     string
		subchapters    bool
		furiganaFlag   string
		splitOversized bool
		exportCover    bool
		bulkFlag       bool
		recursive      bool
		verbose        bool
	)

	rootCmd := &cobra.Command{
		Use:   "chapterize [flags] INPUT",
		Short: "Extract EPUB chapters into plain-text files",
		Long: `chapterize reads an EPUB container (or an already-extracted EPUB
directory) and writes one plain-text file per chapter. With --bulk it
processes every .epub in a directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return err
			}

			// Flags override file values only when set explicitly.
			if cmd.Flags().Changed("output") {
				cfg.Output.Dir = outputFlag
			}
			if cmd.Flags().Changed("subchapters") {
				cfg.Extract.Subchapters = subchapters
			}
			if cmd.Flags().Changed("furigana") {
				cfg.Extract.Furigana = furiganaFlag
			}
			if cmd.Flags().Changed("split-oversized") {
				cfg.Extract.SplitOversized = splitOversized
			}
			if cmd.Flags().Changed("cover") {
				cfg.Extract.ExportCover = exportCover
			}
			if cmd.Flags().Changed("recursive") {
				cfg.Bulk.Recursive = recursive
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			mode, err := furiganaMode(cfg.Extract.Furigana)
			if err != nil {
				return err
			}

			log := logging.New(os.Stderr, cfg.Logging.Level)
			opts := extract.Options{
				OutputDir:      cfg.Output.Dir,
				Subchapters:    cfg.Extract.Subchapters,
				Furigana:       mode,
				SplitOversized: cfg.Extract.SplitOversized,
				ChunkSize:      cfg.Extract.ChunkSize,
				ExportCover:    cfg.Extract.ExportCover,
			}

			input := args[0]
			info, err := os.Stat(input)
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}

			// A directory that is not itself an extracted EPUB is a
			// directory of books.
			if bulkFlag || (info.IsDir() && !archive.IsExtractedTree(input)) {
				summary, err := bulk.Run(bulk.Options{
					InputDir:  input,
					OutputDir: cfg.Output.Dir,
					Recursive: cfg.Bulk.Recursive,
					Extract:   opts,
				}, log)
				if err != nil {
					return err
				}
				summary.WriteSummaryTable(os.Stdout)
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d books failed", summary.Failed, summary.Failed+summary.Succeeded)
				}
				return nil
			}

			src, err := archive.Prepare(input)
			if err != nil {
				return err
			}
			defer src.Cleanup()

			res, err := extract.NewRunner(opts, log).Run(src.Root, src.Name)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d chapters, %d files written to %s\n", res.Title, res.Chapters, res.Files, res.OutputDir)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", ".", "Output directory")
	rootCmd.Flags().BoolVar(&subchapters, "subchapters", false, "Split chapters on numbered subchapter markers")
	rootCmd.Flags().StringVar(&furiganaFlag, "furigana", "omit", "Furigana handling: omit or inline")
	rootCmd.Flags().BoolVar(&splitOversized, "split-oversized", false, "Split very long chapters into part files")
	rootCmd.Flags().BoolVar(&exportCover, "cover", false, "Export the cover image alongside the text")
	rootCmd.Flags().BoolVar(&bulkFlag, "bulk", false, "Treat INPUT as a directory of .epub files")
	rootCmd.Flags().BoolVar(&recursive, "recursive", false, "Scan subdirectories in bulk mode")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}

// furiganaMode maps the config/flag value to an extraction mode.
func furiganaMode(s string) (epub.FuriganaMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "omit":
		return epub.FuriganaOmit, nil
	case "inline":
		return epub.FuriganaInline, nil
	}
	return epub.FuriganaOmit, fmt.Errorf("invalid furigana mode %q (want omit or inline)", s)
}
