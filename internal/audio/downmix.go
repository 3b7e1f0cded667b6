package audio

// maxSample16 is the quantization scale for 16-bit signed output.
const maxSample16 = 32767.0

// DownmixMono folds interleaved multi-channel float frames into mono by
// taking the arithmetic mean of all channel samples in each frame. Every
// channel contributes equally. src must hold a whole number of frames;
// the number of frames written to dst is returned.
func DownmixMono(src []float64, channels int, dst []float64) int {
	if channels < 1 {
		return 0
	}
	if channels == 1 {
		return copy(dst, src)
	}

	frames := len(src) / channels
	if frames > len(dst) {
		frames = len(dst)
	}
	div := float64(channels)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += src[i*channels+ch]
		}
		dst[i] = sum / div
	}
	return frames
}

// QuantizeS16 converts mono float samples to 16-bit signed PCM values.
// Each sample is clamped to [-1, 1], scaled by 32767, and truncated toward
// zero. Out-of-range samples are clamped, never wrapped.
func QuantizeS16(src []float64, dst []int) int {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		v := src[i]
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		dst[i] = int(v * maxSample16)
	}
	return n
}
