package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/docuchat/docuchat/internal/ai"
	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/db"
	"github.com/docuchat/docuchat/internal/filestore"
	"github.com/docuchat/docuchat/internal/handler"
	"github.com/docuchat/docuchat/internal/job"
	"github.com/docuchat/docuchat/internal/middleware"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/repo"
	"github.com/docuchat/docuchat/internal/schedule"
	"github.com/docuchat/docuchat/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docuchat",
		Short: "docuchat backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docuchat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("rag_engine", cfg.RAG.Engine),
	)

	userRepo := repo.NewUserRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	chatRepo := repo.NewChatRepo(conn)
	messageRepo := repo.NewMessageRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	generateProvider, err := ai.NewProvider(cfg.AI.Generate.Provider, cfg.AI.Generate.Data)
	if err != nil {
		return fmt.Errorf("init generate provider: %w", err)
	}
	embedProvider, err := ai.NewProvider(cfg.AI.Embed.Provider, cfg.AI.Embed.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	manager := ai.NewManager(
		ai.NewGenerator(generateProvider, cfg.AI.Generate.Model),
		ai.NewEmbedder(embedProvider, cfg.AI.Embed.Model),
		ai.ManagerConfig{
			EmbedDimension:  cfg.AI.EmbedDimension,
			TimeoutSeconds:  cfg.AI.TimeoutSeconds,
			Temperature:     cfg.AI.Temperature,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
		},
	)

	retrieval := rag.NewRetrievalResponder(manager, chunkRepo, manager, cfg.RAG.TopK)
	responder, err := rag.NewResponder(cfg.RAG.Engine, retrieval)
	if err != nil {
		return fmt.Errorf("init rag engine: %w", err)
	}
	chunker := rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, time.Hour*time.Duration(cfg.JWTTTLHours))
	documentService := service.NewDocumentService(docRepo, chunkRepo, store, manager, chunker)
	chatService := service.NewChatService(chatRepo, messageRepo, docRepo, responder)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Documents: handler.NewDocumentHandler(documentService),
		Chats:     handler.NewChatHandler(chatService),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	reaper := job.NewStuckDocumentJob(docRepo, time.Duration(cfg.Jobs.StuckDocumentMinutes)*time.Minute)
	if err := scheduler.AddJob(reaper, cfg.Jobs.StuckDocumentCron); err != nil {
		return fmt.Errorf("schedule jobs: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
