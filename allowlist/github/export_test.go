package github

import "net/url"

// NewFetcherForTest builds a Fetcher whose API calls go
// to baseURL, which must end with "/".
func NewFetcherForTest(
	cfg Config,
	baseURL string,
) (*Fetcher, error) {
	fe, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	fe.client.BaseURL = u

	return fe, nil
}
