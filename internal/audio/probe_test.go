package audio

import (
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestProbeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.wav")

	frames := 2048
	writeTestWAV(t, path, 44100, 16, 2, sineStereo(frames, 44100))

	format, totalFrames, err := ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}

	if format.ChannelCount != 2 {
		t.Errorf("Expected 2 channels, got %d", format.ChannelCount)
	}
	if format.SampleRateHz != 44100 {
		t.Errorf("Expected sample rate 44100, got %g", format.SampleRateHz)
	}
	if format.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", format.BitsPerSample)
	}
	if format.Float {
		t.Error("PCM input must not probe as float")
	}
	if totalFrames != int64(frames) {
		t.Errorf("Expected %d frames, got %d", frames, totalFrames)
	}
}

func TestOpenReaderRejectsNonPCM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "float.wav")

	// Format tag 3 is IEEE float, outside the linear-PCM scope.
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	enc := wav.NewEncoder(f, 44100, 32, 1, 3)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           make([]int, 64),
		SourceBitDepth: 32,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write float WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close float WAV: %v", err)
	}
	f.Close()

	_, err = OpenReader(path)
	if err == nil {
		t.Fatal("Expected probe error for non-PCM format")
	}
	if !IsKind(err, KindProbeFailed) {
		t.Errorf("Expected probe error, got %v", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	dir := t.TempDir()

	t.Run("oversized file rejected before any stream opens", func(t *testing.T) {
		path := filepath.Join(dir, "huge.wav")
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
		// Sparse file reported as 101 MiB by metadata alone.
		if err := f.Truncate(101 << 20); err != nil {
			f.Close()
			t.Fatalf("Failed to truncate file: %v", err)
		}
		f.Close()

		size, err := CheckFileSize(path, DefaultMaxFileBytes)
		if err == nil {
			t.Fatal("Expected size limit error")
		}
		if !IsKind(err, KindFileTooLarge) {
			t.Errorf("Expected file too large error, got %v", err)
		}
		if size != 101<<20 {
			t.Errorf("Expected reported size %d, got %d", int64(101<<20), size)
		}
	})

	t.Run("small file passes", func(t *testing.T) {
		path := filepath.Join(dir, "small.wav")
		if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		size, err := CheckFileSize(path, DefaultMaxFileBytes)
		if err != nil {
			t.Fatalf("Unexpected size error: %v", err)
		}
		if size != 1024 {
			t.Errorf("Expected size 1024, got %d", size)
		}
	})

	t.Run("unreadable path passes the pre-flight check", func(t *testing.T) {
		_, err := CheckFileSize(filepath.Join(dir, "missing.wav"), DefaultMaxFileBytes)
		if err != nil {
			t.Fatalf("Stat failure must not reject at pre-flight: %v", err)
		}
	})
}
