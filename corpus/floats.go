package corpus

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// hostLittleEndian reports whether float32 columns can be viewed in place.
var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1 //nolint:gosec // endianness probe
}()

// floatView returns b as float32 values. On little-endian hosts the result
// aliases b; elsewhere it is a decoded copy.
func floatView(b []byte) []float32 {
	n := len(b) / 4
	if n == 0 {
		return nil
	}
	if hostLittleEndian {
		return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n) //nolint:gosec // mmap regions are page aligned
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// appendFloats appends v to dst in little-endian order.
func appendFloats(dst []byte, v ...float32) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
