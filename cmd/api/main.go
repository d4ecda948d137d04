package main

import (
	"context"
	"os"

	"github.com/curriculum/planner/internal/pkg/logger"
	"github.com/curriculum/planner/internal/server"
)

// @title Curriculum Planner API
// @version 1.0
// @description Programs, courses and prerequisite graphs with student progress tracking.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token as "Bearer <token>"

func main() {
	ctx := context.Background()

	srv, err := server.NewServer(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
