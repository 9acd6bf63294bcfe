//go:generate mockgen -source=deps.go -destination=deps_mock_test.go -package=episode

package episode

import (
	"context"
	"io"
)

type episodeFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
