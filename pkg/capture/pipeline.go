package capture

import (
	"context"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/els0r/fluere/pkg/decode"
	"github.com/els0r/fluere/pkg/export"
	"github.com/els0r/fluere/pkg/flowtable"
	"github.com/els0r/fluere/pkg/types"
	"github.com/els0r/telemetry/logging"
)

// sleepEveryNPackets is the cadence of the voluntary scheduler yield on
// Windows, which keeps the kernel capture buffer drained
const sleepEveryNPackets = 10

// liveViewInterval paces the terminal flow table refresh in live mode
const liveViewInterval = 2 * time.Second

// Config parameterizes a capture pipeline run
type Config struct {
	// OutputDir is the directory all output files are created in
	OutputDir string

	// CSVBase is the output file stem for rotated CSV files
	CSVBase string

	// SourceFile switches the pipeline into file replay mode: a single
	// output file named after the source, no rotation, duration ignored
	SourceFile string

	// Duration bounds the overall capture wall-clock time; zero means
	// unbounded
	Duration time.Duration

	// Timeout is the flow idle timeout; zero disables idle eviction
	Timeout time.Duration

	// Interval is the export rotation interval; zero disables rotation
	Interval time.Duration

	// UseMacs includes the link-layer addresses in the flow key
	UseMacs bool

	// SleepInterval is the duration of the per-N-packet yield (Windows)
	SleepInterval time.Duration

	// LiveView periodically prints the current flow table to stdout
	LiveView bool
}

// Pipeline owns the single-threaded hot path: it pulls frames from the
// source, drives the decoder and the flow table, and hands completed
// batches to the asynchronous export handler.
type Pipeline struct {
	src     Source
	table   *flowtable.Table
	handler *export.Handler
	cfg     Config

	rotate  bool
	outPath func(at time.Time) string
}

// NewPipeline assembles a pipeline around the given source and export
// handler
func NewPipeline(src Source, handler *export.Handler, cfg Config) *Pipeline {
	p := &Pipeline{
		src:     src,
		table:   flowtable.New(cfg.Timeout),
		handler: handler,
		cfg:     cfg,
	}

	if cfg.SourceFile != "" {
		p.outPath = func(time.Time) string {
			return export.ConvertedPath(cfg.OutputDir, cfg.SourceFile)
		}
	} else {
		p.rotate = cfg.Interval > 0
		p.outPath = func(at time.Time) string {
			return export.RotatedPath(cfg.OutputDir, cfg.CSVBase, at)
		}
	}

	return p
}

// Run executes the capture loop until the source is exhausted, the
// duration elapses or the context is cancelled. All remaining flows are
// drained into a final writeout before it returns.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	defer func() { _ = p.src.Close() }()

	// Unblock a source stuck in a blocking read once the context ends;
	// the loop then observes ErrCaptureStopped on its next iteration
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.src.Close()
		case <-stopped:
		}
	}()

	var (
		start        = time.Now()
		lastRotation = start
		lastView     = start
		batch        []*types.FlowRecord
		packets      int
		streamNow    int64
		onWindows    = runtime.GOOS == "windows"
	)

	currentPath := p.outPath(start)

	for {
		frame, err := p.src.NextFrame()
		if err != nil {
			if errors.Is(err, ErrCaptureStopped) || ctx.Err() != nil {
				break
			}
			logger.Warnf("failed to read frame: %v", err)
			continue
		}

		pkt, err := decode.Decode(frame.Data, frame.Timestamp)
		if err != nil {
			parseErrors.Inc()
			logger.Debugf("discarding frame: %v", err)
			continue
		}

		if !p.cfg.UseMacs {
			pkt.Key.StripMacs()
			pkt.ReverseKey.StripMacs()
		}

		verdict, record := p.table.Add(pkt)
		switch verdict {
		case flowtable.VerdictRejected:
			packetsRejected.Inc()
		case flowtable.VerdictClosed:
			batch = append(batch, record)
		}

		packetsProcessed.Inc()
		packets++
		streamNow = pkt.Timestamp

		if onWindows && p.cfg.SleepInterval > 0 && packets%sleepEveryNPackets == 0 {
			time.Sleep(p.cfg.SleepInterval)
		}

		if p.rotate {
			if time.Since(lastRotation) >= p.cfg.Interval {
				t0 := time.Now()

				batch = append(batch, p.table.Expire(streamNow)...)
				p.queue(currentPath, batch)
				batch = nil

				lastRotation = time.Now()
				currentPath = p.outPath(lastRotation)

				rotationDuration.Observe(time.Since(t0).Seconds())
			}
		} else if p.cfg.SourceFile != "" {
			// replay mode has no rotation clock; expire against the
			// stream time on every packet instead
			batch = append(batch, p.table.Expire(streamNow)...)
		}

		if p.cfg.SourceFile == "" && p.cfg.Duration > 0 && time.Since(start) >= p.cfg.Duration {
			batch = append(batch, p.table.Expire(streamNow)...)
			break
		}

		if p.cfg.LiveView && time.Since(lastView) >= liveViewInterval {
			if err := p.table.Snapshot().TablePrint(os.Stdout); err != nil {
				logger.Warnf("failed to print flow table: %v", err)
			}
			lastView = time.Now()
		}
	}

	drained := p.table.Drain()
	batch = append(batch, drained...)
	p.queue(currentPath, batch)

	logger.With(
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"packets", packets,
		"drained_flows", len(drained),
	).Info("capture finished")

	return nil
}

// queue hands a batch to the export handler and updates the counters
func (p *Pipeline) queue(path string, batch []*types.FlowRecord) {
	p.handler.Queue(path, batch, time.Now())
	flowsExported.Add(float64(len(batch)))
}

// RunPassThrough executes the degenerate pcap pass-through loop: frames
// are copied byte-for-byte into a savefile, with the same rotation and
// duration clocks as the flow pipeline but no decoding or aggregation.
func RunPassThrough(ctx context.Context, src Source, dir, base string, interval, duration time.Duration) error {
	logger := logging.FromContext(ctx)

	defer func() { _ = src.Close() }()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			_ = src.Close()
		case <-stopped:
		}
	}()

	var (
		start        = time.Now()
		lastRotation = start
		frames       int
	)

	savefile, err := NewSavefile(export.RotatedCapturePath(dir, base, start))
	if err != nil {
		return err
	}

	for {
		frame, err := src.NextFrame()
		if err != nil {
			if errors.Is(err, ErrCaptureStopped) || ctx.Err() != nil {
				break
			}
			logger.Warnf("failed to read frame: %v", err)
			continue
		}

		if err := savefile.WriteFrame(frame); err != nil {
			_ = savefile.Close()
			return err
		}
		frames++

		if interval > 0 && time.Since(lastRotation) >= interval {
			if err := savefile.Close(); err != nil {
				return err
			}
			lastRotation = time.Now()
			if savefile, err = NewSavefile(export.RotatedCapturePath(dir, base, lastRotation)); err != nil {
				return err
			}
		}

		if duration > 0 && time.Since(start) >= duration {
			break
		}
	}

	if err := savefile.Close(); err != nil {
		return err
	}

	logger.With(
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"frames", frames,
	).Info("pass-through capture finished")

	return nil
}
