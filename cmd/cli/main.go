package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/taskerid/internal/client/cli"
)

func main() {

	ctx := context.Background()
	os.Exit(cli.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))

}
