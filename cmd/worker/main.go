package main

import (
	"context"
	"os/signal"
	"syscall"

	"app/internal/config"
	"app/internal/infra/db"
	infraQueue "app/internal/infra/queue"
	infraRepo "app/internal/infra/repository"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}

	txManager := infraRepo.NewTxManagerGorm(gormDB)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	//SIGINT/SIGTERMで止める
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := infraQueue.NewWorker(rdb, txManager, logger)
	w.Run(ctx)
}
