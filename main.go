package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.WithError(err).Error("lunchdesk failed")
		os.Exit(1)
	}
}
