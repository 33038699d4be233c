package main

import (
	"log"

	"github.com/arman61-hub/AutoDek/internal/app"
	"github.com/arman61-hub/AutoDek/internal/app/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	application.Run()
}
