// Package servecmder provides the serve command for running the memory API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/api"
	cacheutils "github.com/novelforge/continuity/pkg/cache/utils"
	"github.com/novelforge/continuity/pkg/config"
	embeddingutils "github.com/novelforge/continuity/pkg/embeddings/utils"
	"github.com/novelforge/continuity/pkg/engine"
	"github.com/novelforge/continuity/pkg/eventstream"
	"github.com/novelforge/continuity/pkg/eventstream/kafka"
	"github.com/novelforge/continuity/pkg/eventstream/nop"
	"github.com/novelforge/continuity/pkg/graph"
	llmutils "github.com/novelforge/continuity/pkg/llm/utils"
	"github.com/novelforge/continuity/pkg/logger"
	"github.com/novelforge/continuity/pkg/memory"
	storageutils "github.com/novelforge/continuity/pkg/storage/utils"
	"github.com/novelforge/continuity/pkg/summarizer"
	"github.com/novelforge/continuity/pkg/tokens"
	vectorutils "github.com/novelforge/continuity/pkg/vector/utils"
)

type ServeCommander struct {
	listen          string
	sqlitePath      string
	storageProvider string
	inferenceTarget string
	embeddingTarget string
	preciseTokens   bool
	configDir       string
	debug           bool
	logger          *zap.Logger
}

const serveLongDesc string = `Run the continuity memory API server.

The server exposes project-scoped endpoints for recording writing exchanges,
registering story knowledge (characters, locations, items, rules, events,
relations), searching long-term memory, and assembling budgeted context
windows for generation.

Configuration comes from config.toml in the .continuity/ directory,
CONTINUITY_* environment variables, and command flags, in ascending
precedence.

Examples:
  continuity serve
  continuity serve --listen :9000 --sqlite ./story.db`

const serveShortDesc string = "Run the memory API server"

// flagBindings maps dotted viper keys to the serve flags that override them.
var flagBindings = map[string]string{
	"api.listen":          "listen",
	"storage.sqlite_path": "sqlite",
	"storage.provider":    "storage",
	"inference.target":    "inference-target",
	"embedding.target":    "embedding-target",
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the SQLite database")
	cmd.Flags().StringVar(&cmder.storageProvider, "storage", "", "Storage provider (sqlite, postgres)")
	cmd.Flags().StringVar(&cmder.inferenceTarget, "inference-target", "", "Inference backend base URL")
	cmd.Flags().StringVar(&cmder.embeddingTarget, "embedding-target", "", "Embedding backend base URL")
	cmd.Flags().BoolVar(&cmder.preciseTokens, "precise-tokens", false, "Use the tokenizer-backed estimator instead of the character heuristic")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags beat env and file values once bound.
	for viperKey, flagName := range flagBindings {
		if f := cmd.Flags().Lookup(flagName); f != nil {
			_ = v.BindPFlag(viperKey, f)
		}
	}

	cfg := config.FromViper(v)
	ctx := context.Background()

	store, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		ProviderType: cfg.Storage.Provider,
		SQLitePath:   cfg.Storage.SQLitePath,
		PostgresURL:  cfg.Storage.PostgresURL,
	})
	if err != nil {
		return fmt.Errorf("creating storage driver: %w", err)
	}
	defer store.Close()

	c.logger.Info("using storage",
		zap.String("provider", cfg.Storage.Provider),
		zap.String("sqlite_path", cfg.Storage.SQLitePath),
	)

	vectors, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector driver: %w", err)
	}
	defer vectors.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	inferencer, err := llmutils.NewInferencer(&llmutils.NewInferencerOpts{
		ProviderType: cfg.Inference.Provider,
		TargetURL:    cfg.Inference.Target,
		Model:        cfg.Inference.Model,
	})
	if err != nil {
		return fmt.Errorf("creating inferencer: %w", err)
	}
	defer inferencer.Close()

	summaryCache, err := cacheutils.NewCache(ctx, &cacheutils.NewCacheOpts{
		ProviderType: cfg.Cache.Provider,
		RedisAddr:    cfg.Cache.RedisAddr,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer summaryCache.Close()

	publisher, err := c.createPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	est, err := c.createEstimator()
	if err != nil {
		return err
	}

	sum := summarizer.NewSummarizer(inferencer, est, summaryCache, summarizer.Config{
		MaxChunkUnits: cfg.Summarizer.MaxChunkUnits,
		OverlapWords:  cfg.Summarizer.OverlapWords,
		CacheTTL:      time.Duration(cfg.Summarizer.CacheTTLMinutes) * time.Minute,
		InferTimeout:  time.Duration(cfg.Summarizer.TimeoutSeconds) * time.Second,
	}, c.logger)

	short := memory.NewShortTermMemory(cfg.Assembler.ShortTermCapacity)
	long := memory.NewLongTermMemory(store, embedder, vectors, c.logger)
	kg := graph.NewKnowledgeGraph(store, graph.NewKeywordChecker(), c.logger)

	eng := engine.New(short, long, kg, sum, est, publisher, engine.Config{
		MaxContextUnits: cfg.Assembler.MaxContextUnits,
		ReservedUnits:   cfg.Assembler.ReservedUnits,
		SearchLimit:     cfg.Assembler.SearchLimit,
		SummaryDepth:    cfg.Summarizer.MaxDepth,
	}, c.logger)

	server := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, eng, c.logger)

	c.logger.Info("starting api server",
		zap.String("api_addr", cfg.API.Listen),
	)

	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) createPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	switch cfg.EventStream.Provider {
	case "kafka":
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.EventStream.Brokers,
			Topic:   cfg.EventStream.Topic,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing exchange events",
			zap.Strings("brokers", cfg.EventStream.Brokers),
			zap.String("topic", cfg.EventStream.Topic),
		)
		return publisher, nil
	default:
		return nop.NewPublisher(), nil
	}
}

func (c *ServeCommander) createEstimator() (tokens.Estimator, error) {
	if c.preciseTokens {
		precise, err := tokens.NewPrecise()
		if err != nil {
			return nil, fmt.Errorf("creating precise estimator: %w", err)
		}
		c.logger.Info("using tokenizer-backed estimation")
		return precise, nil
	}
	return tokens.NewHeuristic(), nil
}
