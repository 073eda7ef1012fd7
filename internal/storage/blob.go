package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/quillbase/quill/internal/models"
)

// Embeddings persist as a fixed-size blob of little-endian IEEE-754 32-bit
// floats. Encode/decode round-trips are bit-identical.

// EncodeEmbedding serializes vec as 4*len(vec) bytes.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding deserializes a blob written by EncodeEmbedding.
func DecodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding blob length %d is not a multiple of 4", models.ErrInvalidArgument, len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
