package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/blob"
	"autoparc/internal/config"
	"autoparc/internal/db"
	"autoparc/internal/logger"
	"autoparc/internal/models"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.App.Dev)
	defer logger.Sync()

	dbConn, err := db.Connect(cfg)
	if err != nil {
		logger.L().Fatal("database connection failed", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.L().Info("migrations completed, exiting")
		return
	}

	// Sessions whose user has been removed are invalidated at request time.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		err := dbConn.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", uid).Limit(1).Count(&count).Error
		return err == nil && count > 0
	})

	blobs, err := blob.NewDiskStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		logger.L().Fatal("blob store init failed", zap.Error(err))
	}

	app := NewApp(dbConn, blobs)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown error", zap.Error(err))
	}
	closeDB(dbConn)
	logger.L().Info("server stopped")
}

func closeDB(dbConn *gorm.DB) {
	sqlDB, err := dbConn.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}
