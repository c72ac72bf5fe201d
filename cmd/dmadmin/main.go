package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dmadmin",
		Usage: "Digital Marketplace admin frontend",
		Commands: []*cli.Command{
			serveCommand,
			manifestCommand,
			keysCommand,
			requestIDCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
