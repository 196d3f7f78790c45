package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/urfave/cli/v2"

	"repo-orbit/helpers"
	"repo-orbit/model"
	"repo-orbit/scene"
)

// TreeCommand returns the tree command
func TreeCommand() *cli.Command {
	return &cli.Command{
		Name:  "tree",
		Usage: "Fetch a repository and print the nodes the 3D view would draw",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.BoolFlag{
				Name:  "expand-all",
				Usage: "Open every folder instead of only the top level",
			},
		},
		Action: runTree,
	}
}

const progressTemplate pb.ProgressBarTemplate = `{{ cycle . "⠋" "⠙" "⠹" "⠸" "⠼" "⠴" "⠦" "⠧" "⠇" "⠏" }} {{ counters . }} requests {{ string . "path" }}`

func runTree(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repo, err := resolveRepo(c, cfg)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "[-] Repository: %s\n", repo.FullName())
	if repo.Dir != "" {
		fmt.Fprintf(out, "[-] GitHub Directory: %s\n", repo.Dir)
	}

	bar := progressTemplate.Start64(0)
	client := newGitHubClient(cfg)
	client.Progress = func(path string, err error) {
		bar.Set("path", path)
		bar.Increment()
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.Fetch.Timeout)
	defer cancel()

	root, result, err := client.FetchTree(ctx, repo, repo.Dir)
	bar.Finish()
	if err != nil {
		return fmt.Errorf("failed to fetch repository tree: %w", err)
	}

	var expanded scene.Expander = noneExpanded{}
	if c.Bool("expand-all") {
		expanded = allExpanded{}
	}
	PrintTree(out, root, expanded)

	var files int
	root.Walk(func(node *model.ContentNode, depth int) bool {
		if !node.IsDir() {
			files++
		}
		return true
	})
	fmt.Fprintf(out, "[-] %d files in %d directories, %d requests\n", files, result.Directories(), result.Requests())
	if msg := result.Errors.Message(); msg != "" {
		fmt.Fprintln(out, helpers.Colorize(fmt.Sprintf("[!] %d failed, last error: %s", result.Errors.Count(), msg), helpers.Red))
	}
	return nil
}

type allExpanded struct{}

func (allExpanded) IsExpanded(string) bool { return true }

type noneExpanded struct{}

func (noneExpanded) IsExpanded(string) bool { return false }

// PrintTree writes the drawn nodes of root as an indented list, colored the
// way the 3D view colors them.
func PrintTree(w io.Writer, root *model.ContentNode, expanded scene.Expander) {
	for _, node := range scene.Build(root, "", expanded).Nodes {
		line := strings.Repeat("  ", node.Depth) + node.Name
		if node.Kind == model.KindDir {
			line += "/"
		} else if node.Size != "" {
			line += " (" + node.Size + ")"
		}
		fmt.Fprintln(w, helpers.Colorize(line, helpers.ANSIColor(node.Color)))
	}
}
