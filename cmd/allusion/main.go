package main

import (
	"flag"
	"os"

	"allusion/internal/ui"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if err := ui.CreateApplication(*configPath, flag.Arg(0)); err != nil {
		logrus.WithError(err).Error("starting viewer")
		os.Exit(1)
	}
}
