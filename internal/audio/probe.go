package audio

import (
	"fmt"
	"os"
)

// DefaultMaxFileBytes is the pre-flight size limit for input files.
const DefaultMaxFileBytes int64 = 100 << 20 // 100 MiB

// CheckFileSize enforces the pre-flight size limit using filesystem
// metadata only; no stream is opened. A file that cannot be stat'ed passes
// the check and fails later, when its stream is opened. The probed size in
// bytes is returned alongside any limit violation.
func CheckFileSize(path string, maxBytes int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, nil
	}
	size := info.Size()
	if maxBytes > 0 && size > maxBytes {
		return size, newError(KindFileTooLarge, path,
			fmt.Errorf("file size %d bytes exceeds limit of %d bytes", size, maxBytes))
	}
	return size, nil
}

// ProbeFile opens path read-only, probes its native format and frame count,
// and closes it again. No PCM data is decoded.
func ProbeFile(path string) (StreamFormat, int64, error) {
	reader, err := OpenReader(path)
	if err != nil {
		return StreamFormat{}, 0, err
	}
	defer reader.Close()
	return reader.Format(), reader.TotalFrames(), nil
}
