package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"repo-orbit/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "repo-orbit",
		Usage:   "Explore a GitHub repository as a 3D orbit of folders and files",
		Version: version,
		Flags:   cmd.GlobalFlags(),
		Before:  cmd.Setup,
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.TreeCommand(),
			cmd.AskCommand(),
			cmd.ConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
