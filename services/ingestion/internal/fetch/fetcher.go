// Package fetch retrieves the rendered markup of a jobs page.
package fetch

import "context"

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	// Close releases any browser or connection held by the fetcher.
	Close() error
}
