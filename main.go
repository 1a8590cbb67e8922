package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ardnew/packscript/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Main(ctx, os.Args[1:]...)

	stop()
	os.Exit(code)
}
