package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vector is a fixed-length embedding. Every stored vector is
// L2-normalised except the all-zero vector, which is the canonical
// embedding of empty or degenerate input.
type Vector []float32

// vectorSeparator joins vector components in the textual encoding.
const vectorSeparator = ","

// Encode serialises the vector as a delimiter-joined decimal string.
// The encoding is lossless at float32 precision and round-trips
// through DecodeVector.
func (v Vector) Encode() string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return strings.Join(parts, vectorSeparator)
}

// DecodeVector parses a vector from its textual encoding.
// An empty string decodes to an empty vector.
func DecodeVector(s string) (Vector, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, vectorSeparator)
	v := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrMalformedVector, i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every component is zero.
func (v Vector) IsZero() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
