package util

import (
	"regexp"
	"strings"
)

// GitHub login rules: alphanumeric plus single inner hyphens, at most 39
// characters. Repository names additionally allow dots and underscores.
var (
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)
	repoPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

const maxOwnerLen = 39

// SplitRepoFullName splits an "owner/name" string, reporting whether it is a
// valid GitHub repository full name.
func SplitRepoFullName(fullName string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found {
		return "", "", false
	}
	if len(owner) == 0 || len(owner) > maxOwnerLen || !ownerPattern.MatchString(owner) {
		return "", "", false
	}
	if name == "" || !repoPattern.MatchString(name) {
		return "", "", false
	}

	return owner, name, true
}

// ValidRepoFullName reports whether the string is a valid "owner/name" pair.
func ValidRepoFullName(fullName string) bool {
	_, _, ok := SplitRepoFullName(fullName)

	return ok
}
