// Command api runs the HandyHire backend HTTP server.
package main

import (
	"log"
	"net/http"

	"HandyHire-backend/internal/logger"
	"HandyHire-backend/internal/server"
)

// @title HandyHire Backend API
// @version 1.0
// @description Job marketplace backend for trade work: postings, applications and messaging.
// @BasePath /api/v1
func main() {
	if err := logger.Init(); err != nil {
		log.Fatalf("Logger failed to initialize: %s", err)
	}
	defer logger.Sync()

	srv := server.NewServer()

	logger.Get().Sugar().Infof("Listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %s", err)
	}
}
