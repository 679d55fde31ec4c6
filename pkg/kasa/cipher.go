package kasa

import "encoding/binary"

// InitialKey seeds the autokey XOR stream in both directions.
const InitialKey byte = 171

// Encode obfuscates plaintext with the autokey XOR stream. The running key
// becomes each ciphertext byte as it is produced.
//
// When prependLength is set, the plaintext length is written first as a
// 4-byte big-endian header that is left in the clear. TCP frames need the
// header, UDP datagrams don't.
func Encode(plaintext []byte, prependLength bool) []byte {
	var (
		out    []byte
		offset int
	)
	if prependLength {
		out = make([]byte, 4+len(plaintext))
		binary.BigEndian.PutUint32(out, uint32(len(plaintext)))
		offset = 4
	} else {
		out = make([]byte, len(plaintext))
	}

	key := InitialKey
	for i, b := range plaintext {
		key ^= b
		out[offset+i] = key
	}
	return out
}

// Decode reverses Encode for a ciphertext with any length header already
// stripped. Here the running key becomes each consumed input byte, which
// is the same sequence Encode produced.
func Decode(ciphertext []byte) []byte {
	out := make([]byte, len(ciphertext))
	key := InitialKey
	for i, b := range ciphertext {
		out[i] = key ^ b
		key = b
	}
	return out
}
