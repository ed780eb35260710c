package platform

import (
	"context"
	"log/slog"

	"github.com/aretw0/notebox/pkg/core"
)

// New opens the store at uri and returns a loaded repository on top of it.
//
//	repo, err := platform.New(".notebox", platform.WithAdapter("sqlite"))
func New(ctx context.Context, uri string, opts ...Option) (*core.Repository, error) {
	store, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	repoOpts := o.repoOpts
	if o.logger != nil {
		repoOpts = append([]core.RepositoryOption{core.WithLogger(o.logger.With(slog.String("component", "repository")))}, repoOpts...)
	}

	repo := core.NewRepository(store, repoOpts...)
	repo.Load(ctx)
	return repo, nil
}
