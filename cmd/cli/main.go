package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sessiongate/internal/client"
	"github.com/dmitrijs2005/sessiongate/internal/client/cli"
)

func main() {

	addr := os.Getenv("SESSIONGATE_SERVER")
	if addr == "" {
		addr = "localhost:8080"
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&addr, "a", addr, "server address (host:port or URL)")
	_ = fs.Parse(os.Args[1:])

	app := cli.NewApp(client.New(addr), os.Stdin, os.Stdout)

	if err := app.Run(context.Background(), fs.Args()); err != nil {
		if err != cli.ErrUsage {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
