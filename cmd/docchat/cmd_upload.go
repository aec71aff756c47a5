package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docchat/internal/backend"
)

// uploadCmd pushes documents to the backend without starting the TUI
var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload documents for indexing",
	Long: `Uploads one or more documents to the backend for embedding.
Supported formats: PDF, TXT, DOC, DOCX.

Example:
  docchat upload report.pdf notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if !backend.IsSupportedDocument(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}
	}
	logger.Info("Uploading documents", zap.Int("count", len(args)))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.BackendURL,
		QueryTimeout:  cfg.QueryTimeout.Std(),
		UploadTimeout: cfg.UploadTimeout.Std(),
	}, logger)

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if err := client.Upload(baseCtx, args); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %d file(s). The backend is now rebuilding its index.\n", len(args))
	return nil
}
