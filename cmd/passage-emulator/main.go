//go:generate swag init -g router.go -d ../../internal/emulator/http,../../pkg/authsdk,../../pkg/jwtx -o ../../api/emulator --packageName emulator

package main

import (
	"log"

	"github.com/aussiebroadwan/passage/internal/emulator/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize emulator: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("emulator error: %v", err)
	}
}
