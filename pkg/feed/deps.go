//go:generate mockgen -source=deps.go -destination=deps_mock_test.go -package=feed

package feed

import (
	"context"
	"io"
)

type feedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
