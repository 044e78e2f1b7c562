// Package leb128 encodes integers in the LEB128 variable-length format used
// throughout the WebAssembly binary format.
package leb128

// EncodeInt32 encodes the signed value in signed LEB128.
func EncodeInt32(value int32) []byte {
	return EncodeInt64(int64(value))
}

// EncodeInt64 encodes the signed value in signed LEB128.
func EncodeInt64(value int64) (buf []byte) {
	for {
		b := byte(value & 0x7f)
		value >>= 7

		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			buf = append(buf, b)
			return
		}
		buf = append(buf, b|0x80)
	}
}

// EncodeUint32 encodes the unsigned value in unsigned LEB128.
func EncodeUint32(value uint32) []byte {
	return EncodeUint64(uint64(value))
}

// EncodeUint64 encodes the unsigned value in unsigned LEB128.
func EncodeUint64(value uint64) (buf []byte) {
	for {
		b := byte(value & 0x7f)
		value >>= 7

		if value == 0 {
			buf = append(buf, b)
			return
		}
		buf = append(buf, b|0x80)
	}
}
