package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voice-capture/audiofile"
	"voice-capture/capture"
	"voice-capture/config"
	"voice-capture/constant"
	"voice-capture/entities"
	transcriptHandler "voice-capture/handler"
	"voice-capture/pkg/rabbitmq"
	"voice-capture/repository"
	"voice-capture/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := repository.OpenEngine(ctx, cfg.DBPath)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("OpenEngine")
	}
	defer engine.Close()

	sessionRepo := repository.NewSessionRepository(engine)
	chunkRepo := repository.NewChunkRepository(engine)
	transcriptRepo := repository.NewTranscriptRepository(engine)
	metadataRepo := repository.NewMetadataRepository(engine)
	analyticsRepo := repository.NewAnalyticsRepository(engine)

	store, err := audiofile.New(ctx, cfg.Capture.StorageDir)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("audio file store unavailable")
	}

	var publisher rabbitmq.Publisher
	if cfg.Queue.Enabled {
		conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
		} else {
			publisher, err = rabbitmq.NewPublisher(conn, cfg.Queue)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("NewPublisher")
			}

			transcriptService := service.NewTranscriptService(chunkRepo, transcriptRepo)
			deps := transcriptHandler.ServiceDependencies{TranscriptService: transcriptService}
			consumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, transcriptHandler.TranscriptResultHandler)
			go func() {
				if err := consumer.Consume(ctx, deps); err != nil {
					zerolog.Ctx(ctx).Error().Err(err).Msg("Transcript result consumer error")
				}
			}()
		}
	}

	chunkService := service.NewChunkService(sessionRepo, chunkRepo, publisher, cfg)

	chunker := capture.NewChunker(ctx, store, capture.ChunkerConfig{
		Interval:    cfg.Capture.ChunkInterval,
		Format:      cfg.Capture.Format,
		SampleRate:  cfg.Capture.SampleRate,
		Channels:    cfg.Capture.Channels,
		FrameBuffer: cfg.Capture.FrameBuffer,
	}, func(chunk entities.AudioChunk) {
		if err := chunkService.HandleChunkCompleted(ctx, chunk); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("chunk_id", chunk.ID.String()).Msg("failed to handle completed chunk")
		}
	}, func(err error) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("capture error")
	})
	defer chunker.Close()

	if cfg.Capture.Source == "synthetic" {
		source := capture.NewSyntheticSource(cfg.Capture.SampleRate, cfg.Capture.Channels)
		go func() {
			if err := source.Start(ctx, chunker.Recorder().WriteFrame); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("frame source stopped")
			}
		}()
	}

	interruptions := capture.NewSignalInterruptionSource(ctx)
	go capture.NewInterruptionHandler(chunker, interruptions).Run(ctx)

	cleanup := service.NewCleanupService(store, chunkRepo, 2*cfg.Capture.ChunkInterval)
	go cleanup.Run(ctx, 10*time.Minute)

	r := gin.Default()
	registerRoutes(r, &routeDeps{
		chunker:   chunker,
		store:     store,
		sessions:  sessionRepo,
		chunks:    chunkRepo,
		segments:  transcriptRepo,
		metadata:  metadataRepo,
		analytics: analyticsRepo,
	})

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
