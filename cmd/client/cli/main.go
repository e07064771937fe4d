package main

import (
	"context"
	"log"

	"github.com/georemind/georemind/internal/client/cli"
	"github.com/georemind/georemind/internal/client/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
