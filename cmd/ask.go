package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// AskCommand returns the ask command
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:  "ask",
		Usage: "Ask Greptile how one file or folder fits into the repository",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:     "url",
				Usage:    "GitHub page of the file or folder",
				Required: true,
			},
		},
		Action: runAsk,
	}
}

func runAsk(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repo, err := resolveRepo(c, cfg)
	if err != nil {
		return err
	}

	message, err := newGreptileClient(cfg).Query(c.Context, repo, c.String("url"))
	if err != nil {
		return fmt.Errorf("failed to query greptile: %w", err)
	}

	fmt.Fprintln(c.App.Writer, message)
	return nil
}
