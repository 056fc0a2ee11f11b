package eeprom

// MemStore is an in-memory image for tests.
type MemStore struct {
	Data []byte

	// Commits counts Commit calls.
	Commits int

	// CommitErr, if set, is returned by Commit.
	CommitErr error
}

// NewMemStore creates a zeroed image of size bytes.
func NewMemStore(size int) *MemStore {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemStore{Data: make([]byte, size)}
}

// Get returns the byte at addr, or 0 outside the image.
func (m *MemStore) Get(addr int) byte {
	if addr < 0 || addr >= len(m.Data) {
		return 0
	}
	return m.Data[addr]
}

// Put sets the byte at addr. Writes outside the image are ignored.
func (m *MemStore) Put(addr int, b byte) {
	if addr < 0 || addr >= len(m.Data) {
		return
	}
	m.Data[addr] = b
}

// Commit counts the call and returns CommitErr.
func (m *MemStore) Commit() error {
	m.Commits++
	return m.CommitErr
}
