package storage

import (
	"errors"
	"math"
	"testing"

	"github.com/quillbase/quill/internal/models"
)

func TestEncodeDecodeEmbedding_RoundTrip(t *testing.T) {
	vec := []float32{0, 1, -1, 0.999, -0.998, 3.14159, 1e-38, float32(math.Pi)}
	blob := EncodeEmbedding(vec)
	if len(blob) != 4*len(vec) {
		t.Fatalf("blob length = %d, want %d", len(blob), 4*len(vec))
	}

	got, err := DecodeEmbedding(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(vec) {
		t.Fatalf("decoded length = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if math.Float32bits(got[i]) != math.Float32bits(vec[i]) {
			t.Errorf("component %d: %v != %v (bit-level mismatch)", i, got[i], vec[i])
		}
	}
}

func TestEncodeEmbedding_LittleEndian(t *testing.T) {
	blob := EncodeEmbedding([]float32{1.0})
	// IEEE-754 1.0 is 0x3F800000; little-endian bytes are 00 00 80 3F.
	want := []byte{0x00, 0x00, 0x80, 0x3F}
	for i := range want {
		if blob[i] != want[i] {
			t.Errorf("byte %d = %#02x, want %#02x", i, blob[i], want[i])
		}
	}
}

func TestDecodeEmbedding_BadLength(t *testing.T) {
	_, err := DecodeEmbedding([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for blob of length 3")
	}
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDecodeEmbedding_Empty(t *testing.T) {
	got, err := DecodeEmbedding(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty vector, got %v", got)
	}
}
