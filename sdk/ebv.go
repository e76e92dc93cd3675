package sdk

// EncodeEBV encodes v as a Gen2 extensible bit vector: 7-bit groups, most
// significant first, with the high bit set on every byte but the last.
func EncodeEBV(v uint32) []byte {
	var groups [5]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = groups[n-1-i]
		if i < n-1 {
			out[i] |= 0x80
		}
	}
	return out
}
