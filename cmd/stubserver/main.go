// Command stubserver runs an in-memory stand-in for the rent-estimate
// backend, for developing the client without the real service.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/logger"
	"github.com/conorls/dublinrent/internal/stub"
)

func main() {
	var (
		addr     string
		logLevel string
	)
	flag.StringVar(&addr, "a", "localhost:8000", "listen address (ip:port)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	log, err := logger.New(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	handler := &stub.Handler{Store: stub.NewStore(), Log: log}
	router := stub.NewRouter(handler, log)

	log.Info("stub server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
