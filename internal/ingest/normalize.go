package ingest

import (
	"regexp"
)

var (
	githubBlobRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/blob/(.+)$`)
	gitlabBlobRe = regexp.MustCompile(`^https://gitlab\.com/([^/]+)/([^/]+)/-/blob/(.+)$`)
	gistRe       = regexp.MustCompile(`^https://gist\.github\.com/([^/]+)/([0-9a-fA-F]+)$`)
)

// NormalizeURL rewrites a browsable repository-host URL to its raw-content
// form. GitHub blob URLs become raw.githubusercontent.com; GitLab blob URLs
// become the /-/raw/ form; Gist pages become the first file's raw form.
// URLs that match none of these patterns are returned unchanged.
func NormalizeURL(url string) string {
	if m := githubBlobRe.FindStringSubmatch(url); m != nil {
		return "https://raw.githubusercontent.com/" + m[1] + "/" + m[2] + "/" + m[3]
	}
	if m := gitlabBlobRe.FindStringSubmatch(url); m != nil {
		return "https://gitlab.com/" + m[1] + "/" + m[2] + "/-/raw/" + m[3]
	}
	if m := gistRe.FindStringSubmatch(url); m != nil {
		return "https://gist.githubusercontent.com/" + m[1] + "/" + m[2] + "/raw"
	}
	return url
}
