// Package hash implements the 32-bit FNV-1a hash used to fingerprint identifiers.
package hash

const (
	offsetBasis uint32 = 0x811c9dc5
	prime       uint32 = 0x01000193
)

// Bytes returns the FNV-1a hash of data
func Bytes(data []byte) uint32 {
	h := offsetBasis
	for _, b := range data {
		h ^= uint32(b)
		h *= prime
	}
	return h
}

// String returns the FNV-1a hash of s without copying it
func String(s string) uint32 {
	h := offsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
