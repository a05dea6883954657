package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"resultportal/backend/internal/curriculum"
	"resultportal/backend/internal/gateway"
	"resultportal/backend/internal/result"
	"resultportal/backend/internal/shared"
	"resultportal/backend/internal/student"
)

// curriculumSource and resultCascade are late-bound adapters. The three
// services reference each other in a cycle (curriculum syncs results, results
// resolve students, student deletion cascades to results), so two of the
// edges are bound after construction.
type curriculumSource struct {
	svc *curriculum.Service
}

func (c *curriculumSource) Get(ctx context.Context, department string, semester int32) ([]shared.SubjectDefinition, error) {
	return c.svc.Get(ctx, department, semester)
}

type resultCascade struct {
	svc *result.Service
}

func (c *resultCascade) DeleteForStudent(ctx context.Context, studentID string) (int64, error) {
	return c.svc.DeleteForStudent(ctx, studentID)
}

func main() {
	shared.LoadEnv("")

	cfg, err := shared.LoadServiceConfig("resultportal")
	if err != nil {
		log.Fatalf("FATAL: failed to load configuration: %v", err)
	}

	logger, err := shared.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting result portal", zap.String("environment", cfg.Environment))

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer shared.DisconnectMongoDB(client)

	if err := shared.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	studentStore := student.NewMongoStore(db, cfg.QueryTimeout)
	curriculumStore := curriculum.NewMongoStore(db, cfg.QueryTimeout)
	resultStore := result.NewMongoStore(db, cfg.QueryTimeout)

	source := &curriculumSource{}
	cascade := &resultCascade{}

	studentSvc := student.NewService(studentStore, cascade, logger)
	resultSvc := result.NewService(resultStore, studentSvc, source, logger)
	curriculumSvc := curriculum.NewService(curriculumStore, resultSvc, logger)

	source.svc = curriculumSvc
	cascade.svc = resultSvc

	router := gateway.SetupRoutes(cfg, logger, gateway.Services{
		Students:  studentSvc,
		Curricula: curriculumSvc,
		Results:   resultSvc,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
