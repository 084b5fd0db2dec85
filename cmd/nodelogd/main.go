package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eks-patterns/eksops/pkg/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx); err != nil {
		log.Fatal(err)
	}
}
