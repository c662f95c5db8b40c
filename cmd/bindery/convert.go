package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/assemble"
	"github.com/bindery/bindery/internal/config"
	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/epub"
	"github.com/bindery/bindery/internal/home"
	"github.com/bindery/bindery/internal/ingest"
	"github.com/bindery/bindery/internal/pdf"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/transcribe"
)

var (
	convertTitle   string
	convertAuthor  string
	convertOut     string
	convertProfile string
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf-path>",
	Short: "Convert a PDF to ePub in one shot, without the server",
	Long: `Convert ingests a PDF, transcribes it with the active provider profile
when it has no usable text layer, and writes the ePub.

Text-layer PDFs convert without any provider configured. Scanned PDFs
need a profile with a base URL (see bindery api profiles).

Examples:
  bindery convert book.pdf
  bindery convert scan.pdf --profile local --out ~/books/scan.epub`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		conf := config.DefaultConfig()
		if path := cfgFile; path != "" || h.ConfigExists() {
			if path == "" {
				path = h.ConfigPath()
			}
			if cm, err := config.NewManager(path); err == nil {
				conf = *cm.Get()
			}
		}
		dpi := conf.Render.DPI
		if dpi <= 0 {
			dpi = pdf.DefaultDPI
		}

		docs := document.NewStore()
		result, err := ingest.Ingest(docs, h, ingest.Request{
			PDFPath: args[0],
			Title:   convertTitle,
			Author:  convertAuthor,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		if result.Warning != "" {
			logger.Warn(result.Warning, "document_id", result.Document.ID)
		}

		if result.NeedsTranscription {
			prof, err := resolveProfile(h)
			if err != nil {
				return err
			}

			mgr := transcribe.NewManager(transcribe.ManagerConfig{
				Store:      docs,
				Renderer:   &pdf.PopplerRenderer{DPI: dpi},
				Timeout:    time.Duration(conf.Transcribe.TimeoutSeconds) * time.Second,
				MaxRetries: conf.Transcribe.MaxRetries,
				Logger:     logger,
			})
			run, err := mgr.Start(ctx, result.Document.ID, prof)
			if err != nil {
				return err
			}

			logger.Info("transcribing", "pages", result.Document.PageCount, "model", prof.Model)
			select {
			case <-ctx.Done():
				mgr.Cancel(result.Document.ID)
				return ctx.Err()
			case <-run.Done():
			}
		}

		pages, _ := docs.PageTexts(result.Document.ID)
		book := assemble.Build(pages, nil, assemble.Metadata{
			Title:  result.Document.Title,
			Author: result.Document.Author,
		})

		outPath := convertOut
		if outPath == "" {
			outPath = filepath.Join(h.ExportsDir(), epub.Filename(result.Document.Title))
		}
		if err := epub.NewBuilder(book).Build(outPath); err != nil {
			return err
		}

		fmt.Println(outPath)
		return nil
	},
}

// resolveProfile picks the profile named by --profile, or the active one.
func resolveProfile(h *home.Dir) (profile.Profile, error) {
	settings, err := profile.NewStore(h.ProfilesPath()).Load()
	if err != nil {
		return profile.Profile{}, err
	}

	var prof profile.Profile
	var ok bool
	if convertProfile != "" {
		if prof, ok = settings.ByID(convertProfile); !ok {
			return profile.Profile{}, fmt.Errorf("profile %q not found", convertProfile)
		}
	} else if prof, ok = settings.Active(); !ok {
		return profile.Profile{}, errors.New("no active provider profile")
	}

	if !prof.Configured() {
		return profile.Profile{}, fmt.Errorf("profile %q has no base URL; this PDF needs vision transcription", prof.Name)
	}
	return prof, nil
}

func init() {
	convertCmd.Flags().StringVar(&convertTitle, "title", "", "Book title (derived from filename if not provided)")
	convertCmd.Flags().StringVar(&convertAuthor, "author", "", "Book author")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Output .epub path (default: exports dir)")
	convertCmd.Flags().StringVar(&convertProfile, "profile", "", "Provider profile ID (default: active profile)")

	rootCmd.AddCommand(convertCmd)
}
