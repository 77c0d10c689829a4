package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameReaderPadsTrailingFrame(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int16{1, -2, 3, -4, 5} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	r := NewFrameReader(&buf, 2, 2)
	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(first) != 4 || first[0] != 1 || first[3] != -4 {
		t.Fatalf("first frame = %v, want [1 -2 3 -4]", first)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if second[0] != 5 || second[1] != 0 || second[3] != 0 {
		t.Fatalf("second frame = %v, want [5 0 0 0]", second)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
}
