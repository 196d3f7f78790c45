package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"repo-orbit/config"
	"repo-orbit/gh"
	"repo-orbit/greptile"
	"repo-orbit/helpers"
	"repo-orbit/model"
)

// GlobalFlags are accepted before any command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Load environment variables from `FILE`",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log.level (debug, info, warn, error)",
		},
	}
}

func repoFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "repo",
		Aliases: []string{"r"},
		Usage:   "Repository as owner/repo, a github.com URL or a git remote",
	}
}

// Setup loads the env file and configures the global logger. It runs before
// every command.
func Setup(c *cli.Context) error {
	if err := config.LoadEnvFile(c.String("env")); err != nil {
		return err
	}

	if helpers.IsTerminal(os.Stderr) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	return setLogLevel(c.String("log-level"))
}

func setLogLevel(name string) error {
	if name == "" {
		return nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// loadConfig loads and validates the configuration named by --config. The
// configured log level applies unless --log-level was given.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.IsSet("log-level") {
		if err := setLogLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// resolveRepo picks --repo over the configured repository.
func resolveRepo(c *cli.Context, cfg *config.Config) (model.RepoComponents, error) {
	raw := c.String("repo")
	if raw == "" {
		raw = cfg.Repo
	}
	if raw == "" {
		return model.RepoComponents{}, fmt.Errorf("a repository is required: pass --repo or set repo in the config")
	}

	repo, err := helpers.ParseRepo(raw)
	if err != nil {
		return model.RepoComponents{}, fmt.Errorf("failed to parse repository: %w", err)
	}
	return repo, nil
}

func newGitHubClient(cfg *config.Config) *gh.Client {
	client := gh.NewClient(cfg.GitHub.Token)
	client.BaseURL = cfg.GitHub.APIURL
	client.Concurrency = cfg.Fetch.Concurrency
	return client
}

func newGreptileClient(cfg *config.Config) *greptile.Client {
	client := greptile.NewClient(cfg.Greptile.APIKey, cfg.GitHub.Token)
	client.BaseURL = cfg.Greptile.APIURL
	client.Branch = cfg.Greptile.Branch
	client.HTTPClient.Timeout = cfg.Greptile.Timeout
	return client
}
