package ident

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Identifiable is anything with a stable byte identity, from which a
// content address is derived.
type Identifiable interface {
	Identity() []byte
}

// ContentAddress returns the hex sha256 address of an entity's identity.
func ContentAddress(entity Identifiable) string {
	h := sha256.New()
	_, _ = h.Write(entity.Identity())
	return hex.EncodeToString(h.Sum(nil))
}

// AddressWriter accumulates a length-prefixed encoding of marshalled fields.
// Two entities have equal addresses iff their marshalled field sequences are
// byte-equal.
type AddressWriter struct {
	buf []byte
}

func NewAddressWriter() *AddressWriter {
	return &AddressWriter{buf: make([]byte, 0)}
}

func (b *AddressWriter) MarshalBytes(v []byte) {
	b.MarshalInt64(int64(len(v)))
	b.buf = append(b.buf, v...)
}

func (b *AddressWriter) MarshalString(v string) {
	b.MarshalInt64(int64(len(v)))
	b.buf = append(b.buf, []byte(v)...)
}

func (b *AddressWriter) MarshalInt64(v int64) {
	bytes := make([]byte, 8) //nolint:mnd
	binary.BigEndian.PutUint64(bytes, uint64(v))
	b.buf = append(b.buf, bytes...)
}

func (b *AddressWriter) MarshalStringSlice(v []string) {
	b.MarshalInt64(int64(len(v)))
	for _, s := range v {
		b.MarshalString(s)
	}
}

func (b *AddressWriter) MarshalStringMap(v map[string]string) {
	b.MarshalInt64(int64(len(v)))
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.MarshalString(k)
		b.MarshalString(v[k])
	}
}

func (b *AddressWriter) MarshalIdentifiable(v Identifiable) {
	b.MarshalBytes(v.Identity())
}

func (b *AddressWriter) Identity() []byte {
	return b.buf
}

func (b *AddressWriter) Address() string {
	return ContentAddress(b)
}
