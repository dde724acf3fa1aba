// Package github implements an allowlist.Fetcher that reads an allow-list
// file from a GitHub repository (cloud or enterprise). Configure with a
// Config containing the repository owner, name, file path and access token.
// Set EnterpriseHost for GitHub Enterprise installations.
package github
