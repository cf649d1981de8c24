package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/prftrack/prf-app-excel/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.Execute(ctx)

	cancel()

	if err != nil {
		os.Exit(1)
	}
}
