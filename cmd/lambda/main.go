package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/oncostat/dosepath/internal/app"
	"github.com/oncostat/dosepath/internal/config"
	"github.com/oncostat/dosepath/internal/dosepath"
	"github.com/oncostat/dosepath/internal/dosepath/cache"
	"github.com/oncostat/dosepath/internal/dosepath/rules"
	"github.com/oncostat/dosepath/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()

	compiler := rules.NewCompiler()
	fitObserver := dosepath.NewAsyncFitObserver(dosepath.NewFitLatencyLogger(log.Default()), cfg.ObsBuffer)
	defer fitObserver.Close()
	builder := dosepath.NewBuilder(
		dosepath.WithFitObserver(fitObserver),
		dosepath.WithMaxNodes(int64(cfg.MaxTreeNodes)),
	)
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(compiler, builder, c)
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Paths)
}
