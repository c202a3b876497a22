package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/navassist/docbot/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question grounded in the documentation",
	Long: `Ask crawls and indexes the configured documentation manuals, answers
the question from the indexed material, and prints the reply with its
citations. The index is built fresh for each invocation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(parent context.Context, question string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := app.answerer.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(result.Reply)
	for _, c := range result.Citations {
		fmt.Printf("  %s (%s)\n", c.Title, c.URL)
	}
	return nil
}
