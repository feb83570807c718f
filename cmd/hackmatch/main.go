package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hackmatch/internal/config"
	"hackmatch/internal/domain"
	"hackmatch/internal/embedding/local"
	openaiembed "hackmatch/internal/embedding/openai"
	"hackmatch/internal/scrape"
	"hackmatch/internal/server"
	"hackmatch/internal/service"
	"hackmatch/internal/store/memory"
	mongostore "hackmatch/internal/store/mongo"
	"hackmatch/internal/summarize"
	"hackmatch/internal/tui"
)

var cfgPath string

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "hackmatch",
		Short:         "Scrape, embed and search hackathon projects by similarity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config YAML")
	root.AddCommand(serveCmd(), ingestCmd(), backfillCmd(), searchCmd(), analyzeCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app bundles the assembled pipeline and its teardown.
type app struct {
	cfg   *config.AppConfig
	svc   *service.Service
	store domain.ProjectStore
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	var embedder domain.Embedder
	switch cfg.Embedder.Type {
	case "openai":
		embedder, err = openaiembed.New(openaiembed.Config{
			APIKey:    os.Getenv(cfg.Embedder.OpenAI.APIKeyEnv),
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			Model:     cfg.Embedder.OpenAI.Model,
			Dimension: cfg.Embedder.Dimension,
		})
		if err != nil {
			return nil, err
		}
	case "local":
		embedder = local.New(cfg.Embedder.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Embedder.Type)
	}

	var summarizer domain.Summarizer
	switch cfg.Summarizer.Type {
	case "openai":
		summarizer, err = summarize.New(summarize.Config{
			APIKey:  os.Getenv(cfg.Summarizer.OpenAI.APIKeyEnv),
			BaseURL: cfg.Summarizer.OpenAI.BaseURL,
			Model:   cfg.Summarizer.OpenAI.Model,
		})
		if err != nil {
			return nil, err
		}
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer type: %s", cfg.Summarizer.Type)
	}

	var store domain.ProjectStore
	switch cfg.Storage.Type {
	case "mongo":
		m := cfg.Storage.Mongo
		store, err = mongostore.New(ctx, mongostore.Config{
			URI:             os.Getenv(m.URIEnv),
			Database:        m.Database,
			Collection:      m.Collection,
			IndexName:       m.IndexName,
			PollInterval:    time.Duration(m.PollIntervalSecs) * time.Second,
			MaxPollAttempts: m.MaxPollAttempts,
		}, logger)
		if err != nil {
			return nil, err
		}
	case "memory":
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	fetcher := scrape.New(time.Duration(cfg.Scraper.TimeoutSecs) * time.Second)
	svc := service.New(fetcher, summarizer, embedder, store, cfg.Search.CandidateMultiplier, logger)
	return &app{cfg: cfg, svc: svc, store: store}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		slog.Warn("closing store", "error", err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Recreate the vector index and run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := a.svc.EnsureIndex(ctx); err != nil {
				return err
			}

			srv := server.New(a.svc, slog.Default())
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(a.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func ingestCmd() *cobra.Command {
	var hk domain.Hackathon
	cmd := &cobra.Command{
		Use:   "ingest <hackathon-url>",
		Short: "Scrape a hackathon's project gallery and store summarized projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			hk.URL = args[0]
			if hk.Title == "" {
				hk.Title = hk.URL
			}
			summary, err := a.svc.IngestHackathon(ctx, &hk)
			if err != nil {
				return err
			}
			fmt.Printf("ingested=%d embedded=%d failed=%d\n", summary.Ingested, summary.Embedded, summary.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&hk.Title, "title", "", "hackathon title (partition key)")
	cmd.Flags().StringVar(&hk.Location, "location", "", "hackathon location")
	cmd.Flags().StringVar(&hk.SubmissionDates, "dates", "", "submission dates")
	cmd.Flags().StringVar(&hk.Organization, "organization", "", "organizing body")
	return cmd
}

func backfillCmd() *cobra.Command {
	var force, ensureIndex bool
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed stored projects that still lack a vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if ensureIndex {
				if err := a.svc.EnsureIndex(ctx); err != nil {
					return err
				}
			}
			summary, err := a.svc.Backfill(ctx, service.BackfillOptions{Force: force})
			if err != nil {
				return err
			}
			fmt.Printf("updated=%d skipped_no_text=%d skipped_embed_failure=%d\n",
				summary.Updated, summary.SkippedNoText, summary.SkippedEmbedFailure)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-embed documents that already have a vector")
	cmd.Flags().BoolVar(&ensureIndex, "ensure-index", false, "recreate the vector index first")
	return cmd
}

func searchCmd() *cobra.Command {
	var k int
	var partition string
	var useTUI bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find stored projects similar to a free-text description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if k <= 0 {
				k = a.cfg.Search.DefaultK
			}
			// The memory backend starts empty and indexless; real
			// deployments carry the index in Atlas.
			if a.cfg.Storage.Type == "memory" {
				if err := a.svc.EnsureIndex(ctx); err != nil {
					return err
				}
			}

			if useTUI {
				_, err := tea.NewProgram(tui.New(a.svc, k, partition), tea.WithAltScreen()).Run()
				return err
			}
			if len(args) == 0 {
				return errors.New("query argument required without --tui")
			}
			hits, err := a.svc.Query(ctx, args[0], k, partition)
			if err != nil {
				return err
			}
			printHits(hits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top", "k", 0, "number of results (default from config)")
	cmd.Flags().StringVar(&partition, "hackathon", "", "restrict results to one hackathon title")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "open the interactive explorer")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "analyze <project-url>",
		Short: "Scrape and summarize one project URL and list similar stored projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if k <= 0 {
				k = a.cfg.Search.DefaultK
			}
			hits, err := a.svc.Analyze(ctx, args[0], k)
			if err != nil {
				return err
			}
			printHits(hits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top", "k", 0, "number of results (default from config)")
	return cmd
}

func printHits(hits []domain.ScoredProject) {
	if len(hits) == 0 {
		fmt.Println("no similar projects found")
		return
	}
	for i, h := range hits {
		fmt.Printf("%2d. %.3f  %s", i+1, h.Score, h.Project.Title)
		if h.Project.HackathonTitle != "" {
			fmt.Printf("  (%s)", h.Project.HackathonTitle)
		}
		fmt.Println()
		if h.Project.Summary != "" {
			fmt.Printf("    %s\n", h.Project.Summary)
		}
	}
}
