package model

import "fmt"

// RepoComponents identifies a repository and an optional directory inside it
type RepoComponents struct {
	Owner      string
	Repository string
	Ref        string
	Dir        string
}

// FullName returns the owner/repo form used by the Greptile API and the scene title
func (c RepoComponents) FullName() string {
	return fmt.Sprintf("%s/%s", c.Owner, c.Repository)
}

func (c RepoComponents) IsZero() bool {
	return c.Owner == "" || c.Repository == ""
}
