// Package server contains the gin server setup and route registration.
package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"HandyHire-backend/internal/database"
	"HandyHire-backend/internal/notify"
)

// MyServer bundles the database instance and the notification dispatcher
// the route handlers need.
type MyServer struct {
	DB       *database.DBinstanceStruct
	Notifier notify.Dispatcher
}

// NewServer constructs a configured http.Server around a MyServer instance
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	s := &MyServer{
		DB:       db,
		Notifier: notify.FromEnv(),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
