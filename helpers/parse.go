package helpers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	giturls "github.com/whilp/git-urls"

	"repo-orbit/model"
)

var (
	// owner/repo shorthand
	shortRegex = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
	// /owner/repo/tree/ref/path - directory URL
	treeRegex = regexp.MustCompile(`^/([^/]+)/([^/]+)/tree/([^/]+)/?(.*)`)
	// /owner/repo - repository root
	repoRegex = regexp.MustCompile(`^/([^/]+)/([^/]+?)(?:\.git)?/?$`)
)

// ParseRepo accepts "owner/repo", a github.com web URL (optionally pointing at
// a tree) or a git remote such as git@github.com:owner/repo.git.
func ParseRepo(repo string) (model.RepoComponents, error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return model.RepoComponents{}, fmt.Errorf("empty repository identifier")
	}

	if match := shortRegex.FindStringSubmatch(repo); len(match) == 3 {
		return model.RepoComponents{Owner: match[1], Repository: match[2]}, nil
	}

	if strings.HasPrefix(repo, "http://") || strings.HasPrefix(repo, "https://") {
		return parseWebURL(repo)
	}

	return parseRemote(repo)
}

func parseWebURL(urlStr string) (model.RepoComponents, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return model.RepoComponents{}, fmt.Errorf("invalid URL: %s", urlStr)
	}

	host := strings.ToLower(parsedURL.Host)
	if host != "github.com" && host != "www.github.com" {
		return model.RepoComponents{}, fmt.Errorf("unsupported host: %s\nSupported: github.com", host)
	}

	if match := treeRegex.FindStringSubmatch(parsedURL.Path); len(match) == 5 {
		decodedDir, err := url.QueryUnescape(match[4])
		if err != nil {
			decodedDir = match[4]
		}
		return model.RepoComponents{
			Owner:      match[1],
			Repository: match[2],
			Ref:        match[3],
			Dir:        strings.TrimSuffix(decodedDir, "/"),
		}, nil
	}

	if match := repoRegex.FindStringSubmatch(parsedURL.Path); len(match) == 3 {
		return model.RepoComponents{Owner: match[1], Repository: match[2]}, nil
	}

	return model.RepoComponents{}, fmt.Errorf(
		"invalid GitHub URL format: %s\nExpected formats:\n"+
			"  Repository: https://github.com/owner/repo\n"+
			"  Directory:  https://github.com/owner/repo/tree/branch/path/to/dir",
		urlStr,
	)
}

func parseRemote(remote string) (model.RepoComponents, error) {
	u, err := giturls.Parse(remote)
	if err != nil {
		return model.RepoComponents{}, fmt.Errorf("invalid repository identifier: %s", remote)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.RepoComponents{}, fmt.Errorf("invalid repository identifier: %s", remote)
	}

	return model.RepoComponents{
		Owner:      parts[0],
		Repository: strings.TrimSuffix(parts[1], ".git"),
	}, nil
}
