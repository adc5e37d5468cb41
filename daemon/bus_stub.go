//go:build !unix

package daemon

import "context"

func dial(ctx context.Context, target Target) (Client, error) {
	_, _ = ctx, target
	return nil, ErrUnsupportedPlatform
}
