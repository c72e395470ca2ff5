package machine

const (
	WORD_SIZE  = 3          // Bytes in a word.
	FLOAT_SIZE = 6          // Bytes in a float.
	WORD_MASK  = 0xff_ffff  // Mask of the 24 data bits of a word.
	WORD_SIGN  = 0x80_0000  // Sign bit of a word.
	WORD_MAX   = 0x7f_ffff  // Largest positive word.
	WORD_MIN   = -0x80_0000 // Most negative word.
)

// Word truncates a value to 24 bits and sign extends the result.
func Word(value int32) int32 {
	value &= WORD_MASK
	if value&WORD_SIGN != 0 {
		value |= ^int32(WORD_MASK)
	}
	return value
}

// WordBytes converts a value to a big-endian 3 byte word.
func WordBytes(value int32) (data [WORD_SIZE]byte) {
	data[0] = byte(value >> 16)
	data[1] = byte(value >> 8)
	data[2] = byte(value)
	return
}

// WordValue converts a big-endian 3 byte word to a sign extended value.
func WordValue(data [WORD_SIZE]byte) int32 {
	return Word(int32(data[0])<<16 | int32(data[1])<<8 | int32(data[2]))
}
