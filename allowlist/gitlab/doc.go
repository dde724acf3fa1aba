// Package gitlab implements an allowlist.Fetcher that reads an allow-list
// file from a GitLab project through the raw repository file API.
package gitlab
