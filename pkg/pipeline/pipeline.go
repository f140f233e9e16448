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

/*
Package pipeline assembles the stages of the toolkit into a runnable keyed window pipeline:

	generator -> [filter] -> fan-out -> keyed window engine x width -> merge -> sink

The engines number their results from one shared sequencer, so the merge emits them in the order they were produced
and never waits on an engine whose lane went quiet. Every run gets its own id, carried by the logger of each stage.
*/
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/aggregate"
	"github.com/numaproj/dataflow/pkg/config"
	"github.com/numaproj/dataflow/pkg/forward"
	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/merge"
	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/shuffle"
	"github.com/numaproj/dataflow/pkg/sinks"
	"github.com/numaproj/dataflow/pkg/sources/generator"
	"github.com/numaproj/dataflow/pkg/udf"
	"github.com/numaproj/dataflow/pkg/udf/builtin/filter"
	"github.com/numaproj/dataflow/pkg/window"
	"github.com/numaproj/dataflow/pkg/window/keyed"
)

// Pipeline is a single use keyed window pipeline.
type Pipeline struct {
	id       string
	conf     *config.PipelineConfig
	policy   forward.Policy
	hasher   shuffle.Hasher
	op       aggregate.Operator[float64, any, any]
	assigner window.Assigner
	filter   udf.FilterFunc[Record]
	sink     sinks.Sinker[Result]
	source   *simplebuffer.InMemoryBuffer[Record]
	gen      *generator.Generator[Record]
	started  *atomic.Bool
	log      *zap.SugaredLogger
}

// NewPipeline validates the configuration and builds the pipeline it describes.
func NewPipeline(conf *config.PipelineConfig, opts ...Option) (*Pipeline, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	o := DefaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.NewLogger()
	}
	id := uuid.New().String()
	p := &Pipeline{
		id:      id,
		conf:    conf,
		started: atomic.NewBool(false),
		log:     o.logger.With("pipeline", conf.Name, "run", id),
	}

	// the configuration is validated, the parsers below cannot fail
	p.policy, _ = forward.ParsePolicy(conf.Policy)
	p.hasher, _ = shuffle.ParseHasher(conf.Hasher)
	p.op, _ = aggregate.Lookup(conf.Aggregate)
	assigner, err := conf.Window.Assigner()
	if err != nil {
		return nil, err
	}
	p.assigner = assigner

	if conf.Filter != "" {
		if p.filter, err = filter.New[uint32, float64](conf.Filter); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}

	p.sink = o.sink
	if p.sink == nil {
		if p.sink, err = newSink(conf, p.log); err != nil {
			return nil, err
		}
	}

	p.source = simplebuffer.NewInMemoryBuffer[Record](conf.Name+"-source", conf.BufferDepth, 0)
	genOpts := []generator.Option{
		generator.WithLimit(conf.Source.Limit),
		generator.WithName(conf.Name + "-generator"),
		generator.WithLogger(p.log),
	}
	if conf.Source.Interval > 0 {
		genOpts = append(genOpts, generator.WithInterval(conf.Source.Interval))
	}
	if p.gen, err = generator.NewGenerator[Record](p.source, RecordFunc(conf.Source.Keys, conf.Source.Disorder), genOpts...); err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the id of the run.
func (p *Pipeline) ID() string {
	return p.id
}

// Stop ends the source stream. The records already generated still flow to the sink and Run returns once they did.
func (p *Pipeline) Stop() {
	p.gen.Stop()
}

// Run runs every stage until the sink consumed the end marker, or a stage failed.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	if !p.started.CompareAndSwap(false, true) {
		return fmt.Errorf("pipeline %s: already started", p.conf.Name)
	}
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(p.conf.Name).Observe(time.Since(start).Seconds())
		if err != nil {
			runFailures.WithLabelValues(p.conf.Name).Inc()
		}
	}()

	ctx = logging.WithLogger(ctx, p.log)
	name, width, depth := p.conf.Name, p.conf.Width, p.conf.BufferDepth
	p.log.Infow("Starting pipeline",
		zap.Int("width", width),
		zap.String("policy", p.policy.String()),
		zap.String("window", p.assigner.Strategy().String()),
		zap.String("aggregate", p.conf.Aggregate),
		zap.String("sink", p.sink.GetName()))

	sequencer := window.NewSequencer()
	engines := make([]*keyed.Engine[uint32, float64, any, any], width)
	for i := range engines {
		if engines[i], err = keyed.NewEngine[uint32, float64, any, any](p.op, p.assigner,
			keyed.WithSequencer(sequencer),
			keyed.WithLateness(p.conf.Window.Lateness),
			keyed.WithMaxKeys(p.conf.Source.Keys),
			keyed.WithName(name+"-window-"+strconv.Itoa(i)),
			keyed.WithLogger(p.log)); err != nil {
			return err
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.gen.Run(gCtx)
	})

	var records isb.BufferReader[Record] = p.source
	if p.filter != nil {
		filtered := simplebuffer.NewInMemoryBuffer[Record](name+"-filtered", depth, 0)
		in := records
		g.Go(func() error {
			return udf.Filter[Record](gCtx, in, filtered, p.filter, udf.WithName(name+"-filter"))
		})
		records = filtered
	}

	lanes := simplebuffer.NewBuffers[Record](name+"-lane", width, depth)
	fanOpts := []forward.Option{
		forward.WithPolicy(p.policy),
		forward.WithName(name + "-fanout"),
		forward.WithLogger(p.log),
	}
	if p.policy == forward.KeyBy {
		s := shuffle.NewShuffle(width, shuffle.WithHasher(p.hasher))
		fanOpts = append(fanOpts, forward.WithKeyExtractor[Record](shuffle.KeyBy[Record](s, recordKey)))
	}
	in := records
	g.Go(func() error {
		return forward.FanOut[Record](gCtx, in, isb.Writers[Record](lanes), fanOpts...)
	})

	results := simplebuffer.NewBuffers[Result](name+"-windows", width, depth)
	for i, engine := range engines {
		engine := engine
		lane, out := lanes[i], results[i]
		g.Go(func() error {
			return engine.Run(gCtx, lane, []isb.BufferWriter[Result]{out})
		})
	}

	merged := simplebuffer.NewInMemoryBuffer[Result](name+"-merged", depth, 0)
	g.Go(func() error {
		return merge.Merge[Result](gCtx, isb.Readers[Result](results), merged, merge.BySequence[uint32, any],
			merge.WithFrontier(sequencer.Frontier, merge.SequenceOf[uint32, any]),
			merge.WithName(name+"-merge"),
			merge.WithLogger(p.log))
	})
	g.Go(func() error {
		return sinks.Run[Result](gCtx, merged, p.sink)
	})

	if err = g.Wait(); err != nil {
		p.log.Errorw("Pipeline failed", zap.Error(err))
		return err
	}
	p.log.Infow("Pipeline finished", zap.Uint64("generated", p.gen.Count()), zap.Duration("elapsed", time.Since(start)))
	return nil
}
