package audio

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer writes mono 16-bit PCM chunks to a WAV file. The RIFF chunk sizes
// are finalized on Close, so a Writer must always be closed, including on
// error paths.
type Writer struct {
	path   string
	f      *os.File
	enc    *wav.Encoder
	buf    *gaudio.IntBuffer
	closed bool
}

// CreateWriter creates or truncates path for writing in the given output
// format. A pre-existing file at path is overwritten, not merged.
func CreateWriter(path string, format StreamFormat) (*Writer, error) {
	if format.ChannelCount != 1 || format.BitsPerSample != OutputBitDepth || format.Float {
		return nil, newError(KindFormatNegotiationFailed, path,
			fmt.Errorf("output format must be mono %d-bit integer PCM", OutputBitDepth))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, newError(KindStreamOpenFailed, path, err)
	}

	enc := wav.NewEncoder(f,
		int(format.SampleRateHz),
		int(format.BitsPerSample),
		int(format.ChannelCount),
		wavPCMFormat,
	)

	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		buf: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: int(format.ChannelCount),
				SampleRate:  int(format.SampleRateHz),
			},
			SourceBitDepth: int(format.BitsPerSample),
		},
	}, nil
}

// WriteFrames appends mono samples already quantized to the 16-bit range.
func (w *Writer) WriteFrames(samples []int) error {
	if w.closed {
		return newError(KindWriteFailed, w.path, fmt.Errorf("writer is closed"))
	}
	if len(samples) == 0 {
		return nil
	}
	w.buf.Data = samples
	if err := w.enc.Write(w.buf); err != nil {
		return newError(KindWriteFailed, w.path, err)
	}
	return nil
}

// Close finalizes the WAV header and releases the file. Safe to call more
// than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	encErr := w.enc.Close()
	fileErr := w.f.Close()
	if encErr != nil {
		return newError(KindWriteFailed, w.path, encErr)
	}
	if fileErr != nil {
		return newError(KindWriteFailed, w.path, fileErr)
	}
	return nil
}
