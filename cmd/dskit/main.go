package main

import (
	"context"
	"os"

	"github.com/datazip-inc/dskit/protocol"
	"github.com/datazip-inc/dskit/utils/logger"
	"github.com/datazip-inc/dskit/utils/safego"
)

func main() {
	defer safego.Recovery(true)

	if err := protocol.Execute(context.Background()); err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
