package kasa

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(171))
	inputs := [][]byte{
		nil,
		{},
		{0x00},
		{0xff, 0x00, 0xab},
		[]byte(`{"system":{"get_sysinfo":{}}}`),
		[]byte("caf\xe9 \xff latin-1 bytes"),
	}
	for i := 0; i < 64; i++ {
		b := make([]byte, rng.Intn(512))
		rng.Read(b)
		inputs = append(inputs, b)
	}

	for _, in := range inputs {
		out := Decode(Encode(in, false))
		if !bytes.Equal(out, in) {
			t.Errorf("round trip mismatch: got %x, want %x", out, in)
		}
	}
}

func TestEncodeKnownVector(t *testing.T) {
	got := Encode([]byte("A"), false)
	if len(got) != 1 || got[0] != 171^0x41 {
		t.Fatalf("Encode(\"A\") = %x, want %x", got, []byte{171 ^ 0x41})
	}
	if dec := Decode([]byte{171 ^ 0x41}); !bytes.Equal(dec, []byte{0x41}) {
		t.Fatalf("Decode = %x, want 41", dec)
	}

	// second byte is keyed by the first ciphertext byte, not the seed
	got = Encode([]byte("AB"), false)
	want := []byte{0xea, 0xea ^ 0x42}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode(\"AB\") = %x, want %x", got, want)
	}
}

func TestDecodeFeedsBackInput(t *testing.T) {
	plain := []byte("outlet")
	enc := Encode(plain, false)

	// decoding with output feedback only recovers the first byte
	key := InitialKey
	wrong := make([]byte, len(enc))
	for i, b := range enc {
		wrong[i] = key ^ b
		key = wrong[i]
	}
	if wrong[0] != plain[0] {
		t.Fatalf("first byte should decode regardless of feedback rule")
	}
	if bytes.Equal(wrong, plain) {
		t.Fatalf("output feedback should diverge after the first byte")
	}
	if got := Decode(enc); !bytes.Equal(got, plain) {
		t.Errorf("Decode = %q, want %q", got, plain)
	}
}

func TestEncodePrependLength(t *testing.T) {
	for _, s := range []string{"", "A", `{"system":{"get_sysinfo":{}}}`} {
		out := Encode([]byte(s), true)
		if len(out) != 4+len(s) {
			t.Fatalf("len = %d, want %d", len(out), 4+len(s))
		}
		if n := binary.BigEndian.Uint32(out[:4]); n != uint32(len(s)) {
			t.Errorf("length header = %d, want %d", n, len(s))
		}
		if got := string(Decode(out[4:])); got != s {
			t.Errorf("Decode(out[4:]) = %q, want %q", got, s)
		}
		if !bytes.Equal(out[4:], Encode([]byte(s), false)) {
			t.Errorf("ciphered body differs from unprefixed encoding")
		}
	}
}
