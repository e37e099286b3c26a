package main

import (
	"log"
	"net/http"

	"github.com/oncostat/dosepath/internal/app"
	"github.com/oncostat/dosepath/internal/config"
	"github.com/oncostat/dosepath/internal/dosepath"
	"github.com/oncostat/dosepath/internal/dosepath/cache"
	"github.com/oncostat/dosepath/internal/dosepath/rules"
	"github.com/oncostat/dosepath/internal/transport/httptransport"
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
	h := httptransport.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/paths", h.Paths)

	log.Printf("listening on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, mux))
}
