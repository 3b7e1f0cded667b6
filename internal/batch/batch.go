package batch

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/JarlLyng/SampleDrumConverter/internal/audio"
)

// DefaultCapacity is the maximum number of jobs a batch accepts.
const DefaultCapacity = 50

// ErrJobNotFound is returned when a job ID does not exist in the batch.
var ErrJobNotFound = errors.New("job not found")

// ErrJobNotFailed is returned when retry is requested for a job that is not
// in the failed state.
var ErrJobNotFailed = errors.New("job is not failed")

// Batch is the ordered, capacity-bounded collection of conversion jobs.
// Insertion order is preserved and drives processing order.
type Batch struct {
	mu           sync.RWMutex
	jobs         []*Job
	capacity     int
	maxFileBytes int64
}

// RejectedFile records one file skipped during Add and why.
type RejectedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AddReport summarizes one Add call: jobs accepted, files rejected by the
// pre-flight size check, and the count of paths dropped over capacity.
type AddReport struct {
	Added     []Snapshot     `json:"added"`
	Rejected  []RejectedFile `json:"rejected,omitempty"`
	Truncated int            `json:"truncated,omitempty"`
}

// New creates an empty batch. capacity <= 0 selects DefaultCapacity;
// maxFileBytes <= 0 selects audio.DefaultMaxFileBytes.
func New(capacity int, maxFileBytes int64) *Batch {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxFileBytes <= 0 {
		maxFileBytes = audio.DefaultMaxFileBytes
	}
	return &Batch{
		jobs:         make([]*Job, 0, capacity),
		capacity:     capacity,
		maxFileBytes: maxFileBytes,
	}
}

// candidate carries the pre-flight results for one Add path.
type candidate struct {
	path   string
	size   int64
	format *audio.StreamFormat
	reject error
}

// Add validates and appends jobs for the given source paths, in order.
// Oversized files are rejected individually before any stream is opened;
// paths beyond the batch capacity are dropped and reported as a count.
// A path that cannot be stat'ed or probed is still accepted, so it can
// fail with its own error during the run instead of blocking the add.
func (b *Batch) Add(paths []string) AddReport {
	// Stat and header probes run before the lock is taken, so snapshot
	// readers are not blocked behind per-file I/O during a large add.
	candidates := make([]candidate, 0, len(paths))
	for _, path := range paths {
		c := candidate{path: path}
		c.size, c.reject = audio.CheckFileSize(path, b.maxFileBytes)
		if c.reject == nil {
			if format, _, probeErr := audio.ProbeFile(path); probeErr == nil {
				c.format = &format
			}
		}
		candidates = append(candidates, c)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var report AddReport
	for i, c := range candidates {
		if len(b.jobs) >= b.capacity {
			report.Truncated = len(paths) - i
			break
		}
		if c.reject != nil {
			report.Rejected = append(report.Rejected, RejectedFile{
				Path:   c.path,
				Reason: c.reject.Error(),
			})
			continue
		}

		job := &Job{
			ID:           uuid.NewString(),
			SourcePath:   c.path,
			Status:       StatusPending,
			SourceFormat: c.format,
			SizeBytes:    c.size,
		}
		b.jobs = append(b.jobs, job)
		report.Added = append(report.Added, job.snapshot())
	}
	return report
}

// Jobs returns snapshots of all jobs in batch order.
func (b *Batch) Jobs() []Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Snapshot, 0, len(b.jobs))
	for _, job := range b.jobs {
		out = append(out, job.snapshot())
	}
	return out
}

// Job returns the snapshot of one job by ID.
func (b *Batch) Job(id string) (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, job := range b.jobs {
		if job.ID == id {
			return job.snapshot(), true
		}
	}
	return Snapshot{}, false
}

// Len returns the number of jobs in the batch.
func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.jobs)
}

// Summary returns derived per-status counts.
func (b *Batch) Summary() Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var s Summary
	for _, job := range b.jobs {
		switch job.Status {
		case StatusPending:
			s.Pending++
		case StatusConverting:
			s.Converting++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	s.Total = len(b.jobs)
	return s
}

// Retry resets a failed job to pending so a new run picks it up again.
// Progress returns to zero and the error message is cleared.
func (b *Batch) Retry(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, job := range b.jobs {
		if job.ID != id {
			continue
		}
		if job.Status != StatusFailed {
			return ErrJobNotFailed
		}
		job.Status = StatusPending
		job.Progress = 0
		job.ErrorMessage = ""
		return nil
	}
	return ErrJobNotFound
}

// Clear removes all jobs from the batch.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = b.jobs[:0]
}

// startNext atomically selects the first pending job and marks it
// converting. Starting only through this method keeps the transition chain
// valid and guarantees at most one converting job at a time, since the
// sequencer is the sole caller and runs on one goroutine.
func (b *Batch) startNext() (*Job, Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, job := range b.jobs {
		if job.Status == StatusPending {
			job.Status = StatusConverting
			job.Progress = 0
			job.ErrorMessage = ""
			return job, job.snapshot(), true
		}
	}
	return nil, Snapshot{}, false
}

// setDestPath records the derived output path for a converting job.
func (b *Batch) setDestPath(job *Job, destPath string) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	job.DestPath = destPath
	return job.snapshot()
}

// setProgress raises a converting job's progress. Values are clamped to
// [0, 1] and never allowed to decrease within one attempt.
func (b *Batch) setProgress(job *Job, progress float32) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	return job.snapshot()
}

// markCompleted finishes a converting job successfully.
func (b *Batch) markCompleted(job *Job) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	job.Status = StatusCompleted
	job.Progress = 1
	return job.snapshot()
}

// markFailed finishes a converting job with an error message.
func (b *Batch) markFailed(job *Job, message string) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	job.Status = StatusFailed
	job.ErrorMessage = message
	return job.snapshot()
}
