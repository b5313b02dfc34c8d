// Package wire defines what travels between the coordinator and its worker
// processes besides the irpc calls themselves.
//
// A worker introduces itself with a JSON Hello text frame before the
// connection is handed to irpc. A partition's buffer travels inside the
// RenderPartition response as one compressed frame:
//
//	"MBR1" | count uint64 (big-endian) | zstd(count x uint32 LE)
//
// The payload never inflates to more than 4*count bytes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Version is bumped whenever a message or the irpc api changes shape.
const Version = 2

// Hello is the first message a worker sends after connecting.
type Hello struct {
	Version int    `json:"version"`
	Host    string `json:"host"`
	PID     int    `json:"pid"`
}

var magic = []byte("MBR1")

const headerLen = 4 + 8

var ErrMalformed = errors.New("malformed values frame")

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithZeroFrames(true))
		return enc
	},
}

// decoders never write past the capacity of the buffer they are handed
var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true))
		return dec
	},
}

// EncodeValues serializes iteration counts into a compressed frame.
func EncodeValues(values []int) ([]byte, error) {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		if v < 0 || uint64(v) > math.MaxUint32 {
			return nil, fmt.Errorf("encode values: value %d at %d out of range", v, i)
		}
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(v))
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)

	frame := make([]byte, 0, headerLen+len(raw)/4)
	frame = append(frame, magic...)
	frame = binary.BigEndian.AppendUint64(frame, uint64(len(values)))
	return enc.EncodeAll(raw, frame), nil
}

// DecodeValues parses a frame produced by EncodeValues. Frames announcing
// more than limit values are refused before anything is decompressed, and
// the payload is never inflated beyond what the header announces.
func DecodeValues(frame []byte, limit int) ([]int, error) {
	if len(frame) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(frame))
	}
	if !bytes.Equal(frame[:4], magic) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformed, frame[:4])
	}
	count := binary.BigEndian.Uint64(frame[4:])
	if limit < 0 || count > uint64(limit) {
		return nil, fmt.Errorf("%w: %d values, at most %d allowed", ErrMalformed, count, limit)
	}
	payload := frame[headerLen:]

	var h zstd.Header
	if err := h.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: zstd header: %v", ErrMalformed, err)
	}
	// small frames do not always carry their size; the capacity limit of the
	// decoder covers those
	if h.HasFCS && h.FrameContentSize != 4*count {
		return nil, fmt.Errorf("%w: payload declares %d bytes, want %d", ErrMalformed, h.FrameContentSize, 4*count)
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)

	raw, err := dec.DecodeAll(payload, make([]byte, 0, 4*count))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decode: %v", ErrMalformed, err)
	}
	if uint64(len(raw)) != 4*count {
		return nil, fmt.Errorf("%w: payload holds %d bytes, want %d", ErrMalformed, len(raw), 4*count)
	}

	values := make([]int, count)
	for i := range values {
		values[i] = int(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return values, nil
}
