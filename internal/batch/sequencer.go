package batch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JarlLyng/SampleDrumConverter/internal/audio"
	"github.com/JarlLyng/SampleDrumConverter/internal/metrics"
)

// OutputSuffix is appended to the source base name for converted files.
const OutputSuffix = ".Mono.wav"

// FileConverter abstracts the per-file conversion pipeline driven by the
// sequencer.
type FileConverter interface {
	ConvertFile(ctx context.Context, srcPath, dstPath string, progress audio.ProgressFunc) error
}

// SequencerConfig wires the sequencer's collaborators. Metrics and Events
// are optional.
type SequencerConfig struct {
	DestDir   string
	Converter FileConverter
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Events    *EventBus
}

// Sequencer drains a batch one job at a time, in batch order. A failed job
// is recorded and the run continues with the next pending job; one corrupt
// file never blocks the rest of the batch.
type Sequencer struct {
	batch     *Batch
	destDir   string
	converter FileConverter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	events    *EventBus
}

// NewSequencer creates a sequencer for the given batch.
func NewSequencer(b *Batch, cfg SequencerConfig) *Sequencer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		batch:     b,
		destDir:   cfg.DestDir,
		converter: cfg.Converter,
		logger:    logger,
		metrics:   cfg.Metrics,
		events:    cfg.Events,
	}
}

// OutputPath derives the destination path for one source file:
// <destDir>/<baseNameWithoutExtension>.Mono.wav.
func OutputPath(destDir, srcPath string) string {
	base := filepath.Base(srcPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destDir, base+OutputSuffix)
}

// Run processes pending jobs sequentially until none remain or the context
// is cancelled. Running out of pending jobs is the normal terminal
// condition, not an error. Completion is observed in start order because
// processing is strictly sequential. The final batch summary is returned.
func (s *Sequencer) Run(ctx context.Context) Summary {
	for {
		if ctx.Err() != nil {
			s.logger.Info("Batch run cancelled, remaining jobs stay pending")
			break
		}

		job, snap, ok := s.batch.startNext()
		if !ok {
			break
		}
		s.publish(EventTypeStatus, snap)
		s.updateGauges()

		if s.metrics != nil {
			s.metrics.ConversionsStarted.Inc()
			s.metrics.ActiveConversions.Set(1)
		}

		destPath := OutputPath(s.destDir, job.SourcePath)
		s.batch.setDestPath(job, destPath)
		s.logger.Info("Converting file",
			slog.String("job_id", job.ID),
			slog.String("source", job.SourcePath),
			slog.String("destination", destPath),
		)

		start := time.Now()
		err := s.converter.ConvertFile(ctx, job.SourcePath, destPath, func(p float32) {
			s.publish(EventTypeProgress, s.batch.setProgress(job, p))
		})
		duration := time.Since(start)

		if err != nil {
			snap = s.batch.markFailed(job, err.Error())
			s.logger.Warn("Conversion failed",
				slog.String("job_id", job.ID),
				slog.String("source", job.SourcePath),
				slog.String("error", err.Error()),
				slog.Duration("duration", duration),
			)
			if s.metrics != nil {
				s.metrics.ConversionsFailed.WithLabelValues(failureKind(err)).Inc()
			}
		} else {
			snap = s.batch.markCompleted(job)
			s.logger.Info("Conversion completed",
				slog.String("job_id", job.ID),
				slog.String("destination", destPath),
				slog.Duration("duration", duration),
			)
			if s.metrics != nil {
				s.metrics.ConversionsCompleted.Inc()
				if info, statErr := os.Stat(destPath); statErr == nil {
					s.metrics.OutputBytes.Add(float64(info.Size()))
				}
			}
		}
		s.publish(EventTypeStatus, snap)

		if s.metrics != nil {
			s.metrics.ConversionDuration.Observe(duration.Seconds())
			s.metrics.ActiveConversions.Set(0)
		}
		s.updateGauges()
	}
	return s.batch.Summary()
}

func (s *Sequencer) publish(eventType EventType, snap Snapshot) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{Type: eventType, Job: snap})
}

func (s *Sequencer) updateGauges() {
	if s.metrics == nil {
		return
	}
	summary := s.batch.Summary()
	s.metrics.SetJobCounts(summary.Pending, summary.Converting, summary.Completed, summary.Failed)
}

// failureKind maps a conversion error to its metrics label.
func failureKind(err error) string {
	var convErr *audio.Error
	if errors.As(err, &convErr) {
		return string(convErr.Kind)
	}
	return "unknown"
}
