// Package mem provides a byte-fill helper for raw kernel buffers.
package mem

// Set assigns the value c to every element of buf.
func Set(buf []byte, c byte) {
	for i := range buf {
		buf[i] = c
	}
}
