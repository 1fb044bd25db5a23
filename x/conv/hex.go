// Package conv formats numbers without fmt or strconv, for firmware logs.
package conv

const hexd = "0123456789abcdef"

// AppendHex appends each byte of b as two lowercase hex digits.
func AppendHex(dst, b []byte) []byte {
	for _, c := range b {
		dst = append(dst, hexd[c>>4], hexd[c&0x0f])
	}
	return dst
}

// Addr renders a 7-bit bus address as "0x70".
func Addr(a uint16) string {
	var buf [6]byte
	out := append(buf[:0], '0', 'x')
	if a > 0xff {
		out = append(out, hexd[(a>>12)&0xf], hexd[(a>>8)&0xf])
	}
	out = append(out, hexd[(a>>4)&0xf], hexd[a&0xf])
	return string(out)
}

// Addrs renders a list of addresses as "0x70,0x71".
func Addrs(as []uint16) string {
	var out []byte
	for i, a := range as {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, Addr(a)...)
	}
	return string(out)
}
