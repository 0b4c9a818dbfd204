package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// DialFunc opens a catalog client for one server.
type DialFunc func(ctx context.Context, server string) (client.CatalogClient, error)

// RunServers runs every server independently with at most parallel runs in
// flight (parallel <= 1 means sequential). Reports keep the order of
// servers; a failed server leaves a nil slot and contributes to the returned
// *multierror.Error without stopping the others.
func RunServers(ctx context.Context, servers []string, dial DialFunc, opts RunOptions, parallel int) ([]*model.Report, error) {
	opts.defaults()
	if parallel < 1 {
		parallel = 1
	}

	reports := make([]*model.Report, len(servers))
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	var g errgroup.Group
	g.SetLimit(parallel)

	for i, server := range servers {
		g.Go(func() error {
			rep, err := runServer(ctx, server, dial, opts)
			if err != nil {
				opts.Logger.Error("server run failed", zap.String("server", server), zap.Error(err))
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", server, err))
				mu.Unlock()
				return nil
			}
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()

	return reports, errs.ErrorOrNil()
}

func runServer(ctx context.Context, server string, dial DialFunc, opts RunOptions) (*model.Report, error) {
	c, err := dial(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	opts.Server = server
	return Run(ctx, c, opts)
}
