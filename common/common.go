package common

import (
	"encoding/binary"
	"io"
	"sync"
)

// FreeBytes is a scratch buffer handed out by FreeBytesPool.  The session
// encoders stream every array element through one of these instead of
// allocating per value.
type FreeBytes struct {
	Bytes []byte
}

// Free resets the buffer and hands it back to the pool
func (fb *FreeBytes) Free() {
	fb.Bytes = fb.Bytes[:0]
	FreeBytesPool.Put(fb)
}

// NewFreeBytes gets a buffer from the pool, allocating one if the pool hands
// back an empty one.  The buffer always has room for a uint64.
func NewFreeBytes() *FreeBytes {
	fb := FreeBytesPool.Get().(*FreeBytes)

	if fb.Bytes == nil {
		fb.Bytes = make([]byte, 0, 64)
	}

	return fb
}

// FreeBytesPool recycles encoder buffers
var FreeBytesPool = sync.Pool{
	New: func() interface{} { return new(FreeBytes) },
}

// Uint32 reads four bytes from r and decodes them with byteOrder
func (fb *FreeBytes) Uint32(r io.Reader, byteOrder binary.ByteOrder) (uint32, error) {
	buf := fb.Bytes[:4]
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(buf), nil
}

// Uint64 reads eight bytes from r and decodes them with byteOrder
func (fb *FreeBytes) Uint64(r io.Reader, byteOrder binary.ByteOrder) (uint64, error) {
	buf := fb.Bytes[:8]
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return byteOrder.Uint64(buf), nil
}

// PutUint32 encodes val with byteOrder and writes the four bytes to w
func (fb *FreeBytes) PutUint32(w io.Writer, byteOrder binary.ByteOrder, val uint32) error {
	buf := fb.Bytes[:4]
	byteOrder.PutUint32(buf, val)
	_, err := w.Write(buf)
	return err
}

// PutUint64 encodes val with byteOrder and writes the eight bytes to w
func (fb *FreeBytes) PutUint64(w io.Writer, byteOrder binary.ByteOrder, val uint64) error {
	buf := fb.Bytes[:8]
	byteOrder.PutUint64(buf, val)
	_, err := w.Write(buf)
	return err
}
