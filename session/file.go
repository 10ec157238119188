package session

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/ndtree/ndtree/common"
)

// File is a named set of fields in a Store: scalar constants and arrays
// of uint32.
//
// Arrays are mapped, not copied: MapArray registers a slice and
// ReadArrays fills it in place, so a caller can size its own storage from
// the constants first and have the payload land straight in it.
//
// An encoded array is its element count, the elements, and the double
// sha256 of both, all little endian:
//
//	[count uint32][e0 uint32]...[e(count-1) uint32][checksum 32 bytes]
type File struct {
	name   string
	store  Store
	consts map[string]int64
	arrays []array
	onRead []func() error
}

// array is a mapped slice.  The encode/decode closures hide the element
// type.
type array struct {
	name   string
	len    int
	encode func(*bytes.Buffer, *common.FreeBytes) error
	decode func(*bytes.Reader, *common.FreeBytes) error
}

var order = binary.LittleEndian

// NewFile returns a handle on the file called name in store.  Nothing is
// read until asked for.
func NewFile(store Store, name string) *File {
	return &File{
		name:   name,
		store:  store,
		consts: make(map[string]int64),
	}
}

// Name is the name of the file
func (f *File) Name() string { return f.name }

// Store is where the file lives
func (f *File) Store() Store { return f.store }

// SetConst sets a constant to be written by Write
func (f *File) SetConst(name string, v int64) {
	f.consts[name] = v
}

// Const returns the constant called name: the one set on f if any, else
// the stored one.
func (f *File) Const(name string) (int64, error) {
	if v, ok := f.consts[name]; ok {
		return v, nil
	}
	key := Key(f.name, name)
	b, err := f.store.Get(key)
	if err != nil {
		return 0, err
	}
	fb := common.NewFreeBytes()
	defer fb.Free()
	v, err := fb.Uint64(bytes.NewReader(b), order)
	if err != nil {
		return 0, fmt.Errorf("session: decode constant %s: %w", key, err)
	}
	f.consts[name] = int64(v)
	return int64(v), nil
}

// MapArray registers data as the array called name.  Write stores its
// current contents; ReadArrays overwrites them with the stored ones, which
// must have exactly len(data) elements.
func MapArray[T ~uint32](f *File, name string, data []T) {
	key := Key(f.name, name)
	a := array{
		name: name,
		len:  len(data),
		encode: func(buf *bytes.Buffer, fb *common.FreeBytes) error {
			if err := fb.PutUint32(buf, order, uint32(len(data))); err != nil {
				return err
			}
			for _, v := range data {
				if err := fb.PutUint32(buf, order, uint32(v)); err != nil {
					return err
				}
			}
			return nil
		},
		decode: func(r *bytes.Reader, fb *common.FreeBytes) error {
			n, err := fb.Uint32(r, order)
			if err != nil {
				return err
			}
			if int(n) != len(data) {
				return errLengthMismatch(key, int(n), len(data))
			}
			for i := range data {
				v, err := fb.Uint32(r, order)
				if err != nil {
					return err
				}
				data[i] = T(v)
			}
			return nil
		},
	}
	for i := range f.arrays {
		if f.arrays[i].name == name {
			f.arrays[i] = a
			return
		}
	}
	f.arrays = append(f.arrays, a)
}

// OnRead registers fn to run after ReadArrays filled the mapped arrays.
// The first error stops the chain.
func (f *File) OnRead(fn func() error) {
	f.onRead = append(f.onRead, fn)
}

// ReadArrays loads every mapped array from the store, checking sizes and
// checksums, then runs the OnRead hooks.
func (f *File) ReadArrays() error {
	fb := common.NewFreeBytes()
	defer fb.Free()

	for _, a := range f.arrays {
		key := Key(f.name, a.name)
		b, err := f.store.Get(key)
		if err != nil {
			return err
		}
		if len(b) < chainhash.HashSize {
			return fmt.Errorf("%w: %s is %d bytes", ErrChecksum, key, len(b))
		}
		payload, sum := b[:len(b)-chainhash.HashSize], b[len(b)-chainhash.HashSize:]
		if h := chainhash.DoubleHashH(payload); !bytes.Equal(h[:], sum) {
			return fmt.Errorf("%w: %s", ErrChecksum, key)
		}
		r := bytes.NewReader(payload)
		if err := a.decode(r, fb); err != nil {
			return fmt.Errorf("session: decode %s: %w", key, err)
		}
		if r.Len() != 0 {
			return fmt.Errorf("session: decode %s: %d trailing bytes", key, r.Len())
		}
		log.Tracef("read %s (%d elements)", key, a.len)
	}

	for _, fn := range f.onRead {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// Write stores the constants and the mapped arrays in a single batch
func (f *File) Write() error {
	fb := common.NewFreeBytes()
	defer fb.Free()

	b := make(Batch, len(f.consts)+len(f.arrays))
	for name, v := range f.consts {
		var buf bytes.Buffer
		if err := fb.PutUint64(&buf, order, uint64(v)); err != nil {
			return err
		}
		b[Key(f.name, name)] = buf.Bytes()
	}
	for _, a := range f.arrays {
		var buf bytes.Buffer
		buf.Grow(4*(a.len+1) + chainhash.HashSize)
		if err := a.encode(&buf, fb); err != nil {
			return err
		}
		h := chainhash.DoubleHashH(buf.Bytes())
		buf.Write(h[:])
		b[Key(f.name, a.name)] = buf.Bytes()
	}
	if err := f.store.Write(b); err != nil {
		return err
	}
	log.Debugf("wrote %s: %d constants, %d arrays", f.name, len(f.consts), len(f.arrays))
	return nil
}
