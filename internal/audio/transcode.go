package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// ChunkFrames is the number of frames read, down-mixed, and written per
// loop iteration. One chunk buffer set exists per active conversion.
const ChunkFrames = 32768

// ProgressFunc receives the completed fraction of one conversion, in [0, 1].
// Values are monotonically non-decreasing and reach exactly 1.0 on success.
type ProgressFunc func(float32)

// FrameReader is the read side of an open audio stream: probe, client
// format configuration, and chunked frame delivery.
type FrameReader interface {
	Format() StreamFormat
	SetClientFormat(format StreamFormat) error
	TotalFrames() int64
	ReadFrames(dst []float64) (int, error)
	Close() error
}

// FrameWriter is the write side of an open audio stream.
type FrameWriter interface {
	WriteFrames(samples []int) error
	Close() error
}

// Converter performs chunked mono down-mix conversions of WAV files.
type Converter struct {
	chunkFrames int
	logger      *slog.Logger
}

// NewConverter creates a converter. chunkFrames <= 0 selects ChunkFrames.
func NewConverter(logger *slog.Logger, chunkFrames int) *Converter {
	if chunkFrames <= 0 {
		chunkFrames = ChunkFrames
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		chunkFrames: chunkFrames,
		logger:      logger,
	}
}

// ConvertFile converts the WAV file at srcPath to mono 16-bit PCM at
// dstPath, preserving the source sample rate. Both streams are closed on
// every exit path; on failure the partial output file is removed.
func (c *Converter) ConvertFile(ctx context.Context, srcPath, dstPath string, progress ProgressFunc) (retErr error) {
	reader, err := OpenReader(srcPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	formats, err := NegotiateFormats(reader.Format())
	if err != nil {
		return err
	}
	if err := reader.SetClientFormat(formats.Processing); err != nil {
		return err
	}

	c.logger.Debug("Formats negotiated",
		slog.String("source", srcPath),
		slog.Uint64("channels", uint64(formats.Native.ChannelCount)),
		slog.Float64("sample_rate", formats.Native.SampleRateHz),
		slog.Uint64("bit_depth", uint64(formats.Native.BitsPerSample)),
		slog.Int64("total_frames", reader.TotalFrames()),
	)

	writer, err := CreateWriter(dstPath, formats.Output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
		if retErr != nil {
			os.Remove(dstPath)
		}
	}()

	return c.Transcode(ctx, reader, writer, formats, reader.TotalFrames(), progress)
}

// Transcode runs the chunked conversion loop against an open stream pair.
// Each iteration reads up to a chunk of float frames in the processing
// format, averages the channels into mono, quantizes to 16-bit signed PCM,
// writes the chunk, and emits progress. A stream that ends short of
// totalFrames is a read failure: the header promised more data than the
// file holds, and a silently truncated output must not pass as success.
// On success the final progress emission is exactly 1.0. The context is
// checked once per chunk; cancellation aborts with a cancelled error.
// Stream closing is the caller's responsibility.
func (c *Converter) Transcode(ctx context.Context, src FrameReader, dst FrameWriter, formats FormatSet, totalFrames int64, progress ProgressFunc) error {
	channels := int(formats.Processing.ChannelCount)
	if channels < 1 {
		return newError(KindFormatNegotiationFailed, "",
			fmt.Errorf("processing format has no channels"))
	}

	readBuf := make([]float64, c.chunkFrames*channels)
	monoBuf := make([]float64, c.chunkFrames)
	outBuf := make([]int, c.chunkFrames)

	var processed int64
	for processed < totalFrames {
		select {
		case <-ctx.Done():
			return newError(KindCancelled, "", ctx.Err())
		default:
		}

		frames, err := src.ReadFrames(readBuf)
		if frames > 0 {
			DownmixMono(readBuf[:frames*channels], channels, monoBuf)
			QuantizeS16(monoBuf[:frames], outBuf)
			if werr := dst.WriteFrames(outBuf[:frames]); werr != nil {
				return werr
			}
			processed += int64(frames)
			if progress != nil && processed < totalFrames {
				progress(float32(float64(processed) / float64(totalFrames)))
			}
		}
		if err != nil {
			return err
		}
		if frames < c.chunkFrames {
			// Short read, including zero: end of stream.
			break
		}
	}

	if processed < totalFrames {
		return newError(KindReadFailed, "",
			fmt.Errorf("unexpected end of stream after %d of %d frames", processed, totalFrames))
	}
	if progress != nil {
		progress(1)
	}
	return nil
}
