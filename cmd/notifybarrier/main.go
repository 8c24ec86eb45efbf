package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/st3v3nmw/notifybarrier/internal/cli"
)

func main() {
	log.SetFlags(0)

	if err := cli.Command().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, cli.ErrFailed) {
			os.Exit(1)
		}

		log.Fatal(err)
	}
}
