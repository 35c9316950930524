package dashboard

import "context"

type StatsRepository interface {
	Stats(ctx context.Context, w Window) (*Stats, error)
}
