package mandel

import (
	"math"

	"github.com/marben/dist_mandel/wire"
)

// MaxPixels bounds the size of a grid, and so of any buffer.
const MaxPixels = math.MaxInt32

// Values is the local buffer of one partition: one iteration count per pixel.
// It crosses process boundaries as a zstd frame.
type Values []int

// MarshalBinary implements encoding.BinaryMarshaler.
func (v Values) MarshalBinary() ([]byte, error) {
	return wire.EncodeValues(v)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (v *Values) UnmarshalBinary(data []byte) error {
	values, err := wire.DecodeValues(data, MaxPixels)
	if err != nil {
		return err
	}
	*v = values
	return nil
}
