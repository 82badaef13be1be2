package main

import (
	"context"
	"log"

	"samaj-directory/cmd/api/app"
	"samaj-directory/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background(), nil)
	defer stop()

	a, err := app.New(app.ConfigPath())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}
