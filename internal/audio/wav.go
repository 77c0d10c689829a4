package audio

import (
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// EncodeWAVPCM16LE prefixes mono 16-bit little-endian PCM with a canonical
// 44-byte RIFF header.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(pcm)%2 != 0 {
		// drop a dangling half sample
		pcm = pcm[:len(pcm)-1]
	}

	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	out := make([]byte, wavHeaderSize+len(pcm))
	le := binary.LittleEndian

	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(wavHeaderSize-8+len(pcm)))
	copy(out[8:16], "WAVEfmt ")
	le.PutUint32(out[16:20], 16)
	le.PutUint16(out[20:22], 1) // PCM
	le.PutUint16(out[22:24], channels)
	le.PutUint32(out[24:28], uint32(sampleRate))
	le.PutUint32(out[28:32], uint32(sampleRate*blockAlign))
	le.PutUint16(out[32:34], blockAlign)
	le.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)
	return out, nil
}
