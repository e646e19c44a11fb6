package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/filings-engine/internal/forum"
	"github.com/pdiddy/filings-engine/internal/naming"
	"github.com/pdiddy/filings-engine/internal/render"
	"github.com/pdiddy/filings-engine/internal/secrets"
	"github.com/pdiddy/filings-engine/pkg/types"
)

var threadCmd = &cobra.Command{
	Use:   "thread URL",
	Short: "Capture a forum discussion thread as one PDF",
	Long: `Thread downloads every post of a forum discussion thread, strips the
forum chrome, and renders the whole conversation plus its click-ranked
external references into a single PDF artifact.

Forum API credentials, if required, go in .secrets/forum-api-key and
.secrets/forum-api-username.`,
	Args: cobra.ExactArgs(1),
	RunE: runThread,
}

func init() {
	threadCmd.Flags().String("symbol", "", "ticker symbol to tag the artifact with (default: thread slug)")
	threadCmd.Flags().String("out", "artifacts", "flat output directory")
	threadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(threadCmd)
}

func runThread(cmd *cobra.Command, args []string) error {
	threadURL := args[0]

	slug, _, err := forum.ParseThreadURL(threadURL)
	if err != nil {
		return err
	}

	symbol, _ := cmd.Flags().GetString("symbol")
	if symbol == "" {
		symbol = slug
	}
	outDir, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	client := forum.NewClient(&http.Client{Timeout: timeout}, types.ForumConfig{
		HTTPConfig:  types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		APIKey:      loadedSecrets.Get(secrets.ForumAPIKey, ""),
		APIUsername: loadedSecrets.Get(secrets.ForumAPIUsername, ""),
	})

	lazy := render.NewLazy(func(ctx context.Context) (render.Renderer, error) {
		return render.NewChrome(ctx, types.RenderConfig{})
	})
	defer lazy.Close()

	name := naming.Filename(time.Now(), true, types.CategoryForumThread, symbol, slug, "pdf")
	dest := filepath.Join(outDir, name)

	assembler := forum.NewAssembler(client, lazy)
	art, err := assembler.Assemble(cmd.Context(), threadURL, dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "written: %s (%d bytes)\n", art.Path, art.Size)
	return nil
}
