package machine

const (
	MEMORY_SIZE = 1 << 20         // 1 MiB.
	MAX_ADDRESS = MEMORY_SIZE - 1 // Highest byte address.
)

// Memory is the byte addressable store.
//
// Addresses are not validated beyond the bounds of the backing slice;
// callers keep them within 0 .. MAX_ADDRESS.
type Memory struct {
	Data []byte
}

// NewMemory creates a zeroed memory.
func NewMemory() *Memory {
	return &Memory{Data: make([]byte, MEMORY_SIZE)}
}

// InRange returns true if size bytes starting at address are addressable.
func InRange(address int32, size int) bool {
	return address >= 0 && int(address)+size <= MEMORY_SIZE
}

func (mem *Memory) Byte(address int) byte {
	return mem.Data[address]
}

func (mem *Memory) SetByte(address int, value byte) {
	mem.Data[address] = value
}

// Word returns the 3 bytes at address.
func (mem *Memory) Word(address int) (data [WORD_SIZE]byte) {
	copy(data[:], mem.Data[address:address+WORD_SIZE])
	return
}

// SetWord replaces the 3 bytes at address.
func (mem *Memory) SetWord(address int, data [WORD_SIZE]byte) {
	copy(mem.Data[address:address+WORD_SIZE], data[:])
}

// Float returns the 6 bytes at address.
func (mem *Memory) Float(address int) (data [FLOAT_SIZE]byte) {
	copy(data[:], mem.Data[address:address+FLOAT_SIZE])
	return
}

// SetFloat replaces the 6 bytes at address.
func (mem *Memory) SetFloat(address int, data [FLOAT_SIZE]byte) {
	copy(mem.Data[address:address+FLOAT_SIZE], data[:])
}

// Load copies a block of bytes into memory.
func (mem *Memory) Load(address int, data []byte) {
	copy(mem.Data[address:address+len(data)], data)
}

// Dump returns a copy of size bytes starting at address.
func (mem *Memory) Dump(address int, size int) (data []byte) {
	data = make([]byte, size)
	copy(data, mem.Data[address:address+size])
	return
}

// Reset zeroes the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}
