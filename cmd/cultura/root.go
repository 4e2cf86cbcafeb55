package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/gateway"
)

// loadConfig is swapped in tests.
var loadConfig = conf.Load

type rootOptions struct {
	timeout time.Duration
	backend string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "cultura",
		Short: "Seed and query the cultura discovery catalog",
		Long: `Operator tool for the cultura gateway.

  cultura seed --file orgs.yaml          # import organizations and events
  cultura flatten --file orgs.yaml       # print the assistant seed document
  cultura ask --discover "salsa nights"  # ask the discovery assistant`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       common.ProjectVersion,
	}
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")
	root.PersistentFlags().StringVar(&opts.backend, "store", "", "catalog backend override (memory|postgres|es)")
	root.AddCommand(newSeedCmd(opts), newFlattenCmd(opts), newAskCmd(opts))
	return root
}

// open loads configuration and the shared gateway components.
func (o *rootOptions) open(ctx context.Context) (*gateway.Components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	conf.InitLogger(cfg)
	return gateway.Open(ctx, cfg)
}

func (o *rootOptions) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}
