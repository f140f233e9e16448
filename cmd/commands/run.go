/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow"
	"github.com/numaproj/dataflow/pkg/config"
	"github.com/numaproj/dataflow/pkg/metrics"
	"github.com/numaproj/dataflow/pkg/pipeline"
	"github.com/numaproj/dataflow/pkg/shared/logging"
)

func NewRunCommand() *cobra.Command {
	var (
		configPath  string
		limit       uint64
		metricsAddr string
	)

	command := &cobra.Command{
		Use:   "run",
		Short: "Run a keyed window pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				conf.Source.Limit = limit
			}
			if cmd.Flags().Changed("metrics-addr") {
				conf.Metrics.Addr = metricsAddr
			}
			log := logging.NewLogger().Named("pipeline")
			log.Infow("Starting dataflow", "version", dataflow.GetVersion())
			ctx := logging.WithLogger(context.Background(), log)

			p, err := pipeline.NewPipeline(conf, pipeline.WithLogger(log))
			if err != nil {
				return err
			}
			if configPath != "" {
				config.WatchConfig(configPath, func(c *config.PipelineConfig) {
					log.Warnw("Configuration file changed, the new configuration applies to the next run", zap.String("name", c.Name))
				}, func(err error) {
					log.Errorw("Configuration file changed and no longer validates", zap.Error(err))
				})
			}

			if conf.Metrics.Addr != "" {
				addr, shutdown, err := metrics.NewMetricsServer(conf.Metrics.Addr).Start(ctx)
				if err != nil {
					return fmt.Errorf("failed to start metrics server: %w", err)
				}
				log.Infow("Serving metrics", zap.String("addr", addr))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := shutdown(shutdownCtx); err != nil {
						log.Errorw("Failed to shutdown metrics server", zap.Error(err))
					}
				}()
			}

			// the first signal drains the pipeline, the second one aborts it
			sigCh := make(chan os.Signal, 2)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				select {
				case <-sigCh:
					log.Info("Received signal, draining the pipeline")
					p.Stop()
				case <-ctx.Done():
					return
				}
				select {
				case <-sigCh:
					log.Info("Received second signal, aborting the pipeline")
					cancel()
				case <-ctx.Done():
				}
			}()
			return p.Run(ctx)
		},
	}
	command.Flags().StringVar(&configPath, "config", "", "Path of the pipeline configuration file")
	command.Flags().Uint64Var(&limit, "limit", 0, "Number of records to generate, 0 means until interrupted, overrides source.limit")
	command.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address of the metrics server, overrides metrics.addr")
	return command
}
