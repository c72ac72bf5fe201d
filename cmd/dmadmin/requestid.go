package main

import (
	"fmt"

	"dmadmin/internal/utils"

	"github.com/urfave/cli/v2"
)

var requestIDCommand = &cli.Command{
	Name:  "request-id",
	Usage: "Generate request IDs for tracing calls by hand",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		for range c.Int("count") {
			fmt.Println(utils.RequestID())
		}
		return nil
	},
}
