package audio

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavPCMFormat is the RIFF audio format tag for uncompressed linear PCM.
const wavPCMFormat = 1

// Reader streams frames from a linear-PCM WAV file. After a client format
// is configured it delivers interleaved float64 frames normalized to [-1, 1],
// regardless of the file's on-disk bit depth.
type Reader struct {
	path   string
	f      *os.File
	dec    *wav.Decoder
	native StreamFormat
	frames int64

	// client format conversion, set by SetClientFormat
	configured bool
	scale      float64
	offset     float64

	// reusable decode buffer, grown on demand
	pcm     *gaudio.IntBuffer
	pcmData []int

	closed bool
}

// OpenReader opens path and probes its native format. The probe reads the
// RIFF headers only; no PCM data is consumed. Files that are not valid
// linear-PCM WAV fail with a probe error.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindStreamOpenFailed, path, err)
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		f.Close()
		return nil, newError(KindProbeFailed, path, fmt.Errorf("not a valid WAV file"))
	}
	if dec.WavAudioFormat != wavPCMFormat {
		f.Close()
		return nil, newError(KindProbeFailed, path,
			fmt.Errorf("unsupported audio format tag %d (only linear PCM is supported)", dec.WavAudioFormat))
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		f.Close()
		return nil, newError(KindProbeFailed, path,
			fmt.Errorf("unsupported bit depth %d", dec.BitDepth))
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, newError(KindProbeFailed, path, err)
	}

	channels := int64(dec.NumChans)
	bytesPerSample := int64(dec.BitDepth) / 8
	frames := int64(dec.PCMSize) / (channels * bytesPerSample)

	native := StreamFormat{
		ChannelCount:  uint(dec.NumChans),
		SampleRateHz:  float64(dec.SampleRate),
		BitsPerSample: uint(dec.BitDepth),
		Float:         false,
		Interleaved:   true,
	}

	return &Reader{
		path:   path,
		f:      f,
		dec:    dec,
		native: native,
		frames: frames,
	}, nil
}

// Format returns the file's probed native format.
func (r *Reader) Format() StreamFormat {
	return r.native
}

// TotalFrames returns the number of PCM frames in the file's data chunk.
func (r *Reader) TotalFrames() int64 {
	return r.frames
}

// SetClientFormat configures the in-memory format ReadFrames delivers.
// Only the float processing format at the native channel count and sample
// rate is accepted; anything else is a negotiation failure.
func (r *Reader) SetClientFormat(format StreamFormat) error {
	if !format.Float {
		return newError(KindFormatNegotiationFailed, r.path,
			fmt.Errorf("client format must be float"))
	}
	if format.ChannelCount != r.native.ChannelCount {
		return newError(KindFormatNegotiationFailed, r.path,
			fmt.Errorf("client channel count %d does not match native %d",
				format.ChannelCount, r.native.ChannelCount))
	}
	if format.SampleRateHz != r.native.SampleRateHz {
		return newError(KindFormatNegotiationFailed, r.path,
			fmt.Errorf("client sample rate %g does not match native %g",
				format.SampleRateHz, r.native.SampleRateHz))
	}

	// 8-bit WAV samples are unsigned; deeper depths are signed two's
	// complement.
	switch r.native.BitsPerSample {
	case 8:
		r.offset = 128
		r.scale = 1.0 / 128.0
	default:
		r.offset = 0
		r.scale = 1.0 / float64(int64(1)<<(r.native.BitsPerSample-1))
	}
	r.configured = true
	return nil
}

// ReadFrames fills dst with interleaved float frames and returns the number
// of complete frames read. A short read, including zero, signals end of
// stream. len(dst) must be a multiple of the channel count.
func (r *Reader) ReadFrames(dst []float64) (int, error) {
	if !r.configured {
		return 0, newError(KindFormatNegotiationFailed, r.path,
			fmt.Errorf("client format not configured"))
	}

	want := len(dst)
	if cap(r.pcmData) < want {
		r.pcmData = make([]int, want)
		r.pcm = &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: int(r.native.ChannelCount),
				SampleRate:  int(r.native.SampleRateHz),
			},
		}
	}
	// PCMBuffer truncates Data on a short read, so re-slice every call.
	r.pcm.Data = r.pcmData[:want]

	n, err := r.dec.PCMBuffer(r.pcm)
	if err != nil {
		return 0, newError(KindReadFailed, r.path, err)
	}

	channels := int(r.native.ChannelCount)
	frames := n / channels
	samples := frames * channels
	for i := 0; i < samples; i++ {
		dst[i] = (float64(r.pcm.Data[i]) - r.offset) * r.scale
	}
	return frames, nil
}

// Close releases the underlying file. Safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}
