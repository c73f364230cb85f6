package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/app"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/apperror"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunScheduler(); err != nil {
		logger.Fatal("run scheduler failed", zap.Error(err))
	}
}
