package main

import (
	"log"
	"os"

	"github.com/aussiebroadwan/passage/internal/client/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("failed to initialize passage: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("passage error: %v", err)
	}
}
