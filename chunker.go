package swp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Chunker splits a finite byte stream into 31-byte payload chunks. The first
// chunk leads with the total stream length as a 4-byte little-endian integer
// followed by up to 27 stream bytes; every later chunk carries up to 31
// stream bytes. Short chunks are zero-padded. The sequence is lazy and not
// restartable.
type Chunker struct {
	reader      io.Reader
	totalLength uint32
	offset      uint32
	started     bool
}

func NewChunker(reader io.Reader, totalLength uint32) *Chunker {
	return &Chunker{reader: reader, totalLength: totalLength}
}

// Next returns the next chunk, or io.EOF once the stream is exhausted. A
// stream of length zero still yields exactly one chunk, carrying length
// field 0 and an all-zero payload.
func (chk *Chunker) Next() ([]byte, error) {
	if !chk.started {
		chk.started = true
		chunk := make([]byte, dataBytes)
		binary.LittleEndian.PutUint32(chunk[:lengthFieldSize], chk.totalLength)
		if err := chk.fill(chunk[lengthFieldSize:]); err != nil {
			return nil, err
		}
		return chunk, nil
	}
	if chk.offset >= chk.totalLength {
		return nil, io.EOF
	}
	chunk := make([]byte, dataBytes)
	if err := chk.fill(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

func (chk *Chunker) fill(buffer []byte) error {
	need := min(uint32(len(buffer)), chk.totalLength-chk.offset)
	if need == 0 {
		return nil
	}
	if _, err := io.ReadFull(chk.reader, buffer[:need]); err != nil {
		return fmt.Errorf("read stream at offset %d: %w", chk.offset, err)
	}
	chk.offset += need
	return nil
}

// ChunkCount reports how many chunks a stream of the given length produces.
func ChunkCount(totalLength uint32) int {
	if totalLength <= firstChunkBytes {
		return 1
	}
	rest := totalLength - firstChunkBytes
	return 1 + int((rest+dataBytes-1)/dataBytes)
}
