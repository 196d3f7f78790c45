package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"repo-orbit/server"
	"repo-orbit/viewer"
)

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Fetch a repository and serve its 3D view",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.addr",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repo, err := resolveRepo(c, cfg)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(addr, repo, viewer.NewStore(), newGreptileClient(cfg))

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
		defer cancel()
		if err := srv.Load(fetchCtx, newGitHubClient(cfg)); err != nil {
			log.Error().Err(err).Str("repo", repo.FullName()).Msg("Failed to load repository tree")
		}
	}()

	return srv.Start(ctx)
}
