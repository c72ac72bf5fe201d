package main

import (
	"fmt"

	"dmadmin/internal/declarations"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var manifestCommand = &cli.Command{
	Name:  "manifest",
	Usage: "Load declaration manifests and print them",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Manifest directory, embedded manifests when empty",
			EnvVars: []string{"DM_MANIFESTS_DIR"},
		},
		&cli.StringFlag{
			Name:    "framework",
			Aliases: []string{"f"},
			Usage:   "Only print this framework's manifest",
		},
	},
	Action: func(c *cli.Context) error {
		catalog, err := declarations.LoadCatalog(c.String("dir"))
		if err != nil {
			return err
		}

		frameworks := catalog.Frameworks()
		if slug := c.String("framework"); slug != "" {
			frameworks = []string{slug}
		}

		for _, slug := range frameworks {
			manifest, err := catalog.Manifest(slug)
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n", slug)
			pp.Println(manifest)
		}
		return nil
	},
}
