// Main entry point for the application
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

	root := flag.Arg(0)
	if err := ui.CreateApplication(*configPath, root); err != nil {
		logrus.WithError(err).Error("starting viewer")
		os.Exit(1)
	}
}
