package batch

import (
	"github.com/JarlLyng/SampleDrumConverter/internal/audio"
)

// Status is the lifecycle state of one conversion job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one batch entry. Jobs are owned exclusively by their Batch and
// mutated only under its lock; external observers see Snapshot copies.
type Job struct {
	ID           string
	SourcePath   string
	DestPath     string
	Status       Status
	Progress     float32
	ErrorMessage string

	// SourceFormat is probed once when the job is created and never
	// changes. It is nil when the probe failed; such jobs fail during
	// conversion instead of being rejected up front.
	SourceFormat *audio.StreamFormat
	SizeBytes    int64
}

// Snapshot is an immutable copy of a job's observable state.
type Snapshot struct {
	ID           string              `json:"id"`
	SourcePath   string              `json:"source_path"`
	DestPath     string              `json:"dest_path,omitempty"`
	Status       Status              `json:"status"`
	Progress     float32             `json:"progress"`
	ErrorMessage string              `json:"error_message,omitempty"`
	SourceFormat *audio.StreamFormat `json:"source_format,omitempty"`
	SizeBytes    int64               `json:"size_bytes"`
}

func (j *Job) snapshot() Snapshot {
	return Snapshot{
		ID:           j.ID,
		SourcePath:   j.SourcePath,
		DestPath:     j.DestPath,
		Status:       j.Status,
		Progress:     j.Progress,
		ErrorMessage: j.ErrorMessage,
		SourceFormat: j.SourceFormat,
		SizeBytes:    j.SizeBytes,
	}
}

// Summary is the derived batch-level view: per-status job counts. The batch
// itself never fails wholesale; this is the only aggregate status.
type Summary struct {
	Pending    int `json:"pending"`
	Converting int `json:"converting"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
