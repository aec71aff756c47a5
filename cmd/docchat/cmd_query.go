package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docchat/internal/backend"
	"docchat/internal/resolve"
)

// queryCmd sends a single question without starting the TUI
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask one question and print the answer",
	Long: `Sends a single query to the backend and prints the resolved answer.
Useful for scripting against an already-indexed document set.

Example:
  docchat query "what are the payment terms?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	logger.Info("Sending query", zap.String("question", question))

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
	payload, err := client.Query(baseCtx, question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printContent(resolve.Resolve(payload))
	return nil
}

// printContent writes a resolved answer in plain text for pipelines.
func printContent(c resolve.Content) {
	switch c.Kind {
	case resolve.KindList:
		for _, item := range c.Items {
			fmt.Printf("%s: %s\n", item.Name, item.Description)
		}
	case resolve.KindEmpty:
		fmt.Println(resolve.NoItemsText)
	case resolve.KindError:
		fmt.Println(resolve.RenderErrorText)
	default:
		fmt.Println(c.Text)
	}
}
