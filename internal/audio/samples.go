package audio

import "encoding/binary"

// int16sToBytes encodes samples as little-endian bytes.
func int16sToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// bytesToInt16s decodes little-endian bytes into dst and zeroes whatever
// part of dst the input does not cover.
func bytesToInt16s(dst []int16, src []byte) int {
	n := len(src) / BytesPerSample
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	clear(dst[n:])
	return n
}

// alignDown rounds n down to a multiple of align.
func alignDown(n, align int) int {
	if align <= 1 {
		return n
	}
	return n - n%align
}
