package audio

import "fmt"

// StreamFormat describes the sample layout of an audio stream.
// It is a read-only descriptor; instances are never mutated after creation.
type StreamFormat struct {
	ChannelCount  uint    `json:"channel_count"`
	SampleRateHz  float64 `json:"sample_rate_hz"`
	BitsPerSample uint    `json:"bits_per_sample"`
	Float         bool    `json:"float"`
	Interleaved   bool    `json:"interleaved"`
}

// FormatSet groups the three formats negotiated for one conversion:
// the file's on-disk format, the float format used for down-mix arithmetic,
// and the fixed mono 16-bit output format.
type FormatSet struct {
	Native     StreamFormat
	Processing StreamFormat
	Output     StreamFormat
}

// OutputBitDepth is the bit depth of every converted file.
const OutputBitDepth = 16

// NegotiateFormats derives the processing and output formats from a probed
// native format. The processing format is float at the native channel count
// and sample rate, so channel averaging happens before any quantization.
// The output format is always 1 channel, 16-bit signed PCM, at the native
// sample rate; sample rate is preserved, never resampled.
func NegotiateFormats(native StreamFormat) (FormatSet, error) {
	if native.ChannelCount < 1 {
		return FormatSet{}, newError(KindFormatNegotiationFailed, "",
			fmt.Errorf("channel count must be at least 1, got %d", native.ChannelCount))
	}
	if native.SampleRateHz <= 0 {
		return FormatSet{}, newError(KindFormatNegotiationFailed, "",
			fmt.Errorf("sample rate must be positive, got %g", native.SampleRateHz))
	}
	switch native.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return FormatSet{}, newError(KindFormatNegotiationFailed, "",
			fmt.Errorf("unsupported bit depth %d", native.BitsPerSample))
	}

	processing := StreamFormat{
		ChannelCount:  native.ChannelCount,
		SampleRateHz:  native.SampleRateHz,
		BitsPerSample: 64,
		Float:         true,
		Interleaved:   true,
	}
	output := StreamFormat{
		ChannelCount:  1,
		SampleRateHz:  native.SampleRateHz,
		BitsPerSample: OutputBitDepth,
		Float:         false,
		Interleaved:   true,
	}

	return FormatSet{Native: native, Processing: processing, Output: output}, nil
}
