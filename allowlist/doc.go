// Package allowlist verifies certificate digest reports against a list of
// expected fingerprints, the way API providers restrict keys to known
// signing identities.
//
// An allow-list is a YAML or JSON document:
//
//	package: com.example.app
//	sha1:
//	  - "AA:BB:..."
//	sha256:
//	  - "0123..."
//
// Fingerprints are compared after fingerprint.NormalizeHex, so colon
// separated and lower-case forms match. A Fetcher supplies the raw
// document; FileFetcher reads it from disk and the github and gitlab
// sub-packages read it from a hosted repository.
package allowlist
