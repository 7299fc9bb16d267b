package port

// Store persists the invoice collection as one opaque blob under a single
// named key. There are no partial writes and no schema version field; callers
// own serialization and must deserialize tolerantly.
type Store interface {
	// Read returns the stored blob. ok is false when the key has never been
	// written, which is not an error.
	Read() (data []byte, ok bool, err error)

	// Write replaces the blob in full.
	Write(data []byte) error
}
