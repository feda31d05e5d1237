package swp

import (
	"fmt"
	"io"
	"math/rand"
	"os"
)

const compareChunkSize = 64 * 1024

// FirstDifference compares two byte streams and returns the offset of the
// first differing byte. A length mismatch counts as a difference at the end
// of the shorter stream. The boolean is false when the streams are identical.
func FirstDifference(a, b io.Reader) (int64, bool, error) {
	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	var offset int64
	for {
		nA, errA := io.ReadFull(a, bufA)
		nB, errB := io.ReadFull(b, bufB)
		if errA != nil && errA != io.EOF && errA != io.ErrUnexpectedEOF {
			return 0, false, fmt.Errorf("read first stream: %w", errA)
		}
		if errB != nil && errB != io.EOF && errB != io.ErrUnexpectedEOF {
			return 0, false, fmt.Errorf("read second stream: %w", errB)
		}
		n := min(nA, nB)
		for i := 0; i < n; i++ {
			if bufA[i] != bufB[i] {
				return offset + int64(i), true, nil
			}
		}
		if nA != nB {
			return offset + int64(n), true, nil
		}
		offset += int64(n)
		if errA == io.EOF || errA == io.ErrUnexpectedEOF {
			return 0, false, nil
		}
	}
}

// GenerateRandomFile writes size bytes of seeded random data, for manual
// end-to-end runs of the two endpoints.
func GenerateRandomFile(path string, size int64, seed int64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	random := rand.New(rand.NewSource(seed))
	buffer := make([]byte, compareChunkSize)
	remaining := size
	for remaining > 0 {
		n := min(remaining, int64(len(buffer)))
		random.Read(buffer[:n])
		if _, err := file.Write(buffer[:n]); err != nil {
			file.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		remaining -= n
	}
	return file.Close()
}
