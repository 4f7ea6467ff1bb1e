package main

import (
	"errors"
	"io/fs"
	stdLog "log"
	"time"

	"github.com/Astemirdum/digital-library/library/app"
	"github.com/Astemirdum/digital-library/library/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title Digital Library API
// @version 1.0
// @description Catalog, accounts and the borrow/return workflow.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.InfoLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
