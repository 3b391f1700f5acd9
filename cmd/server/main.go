package main

import (
	"teamkanban/internal/config"
	"teamkanban/internal/server"

	"github.com/sirupsen/logrus"
)

// @title           Team Kanban API
// @version         1.0
// @description     Multi-tenant kanban boards.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("server initialization failed")
	}

	s.Run()
}
