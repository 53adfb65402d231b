package cexpr

// DecodeString decodes the body of a C string literal (without the quotes).
// Unknown escapes keep the escaped character.
func DecodeString(s string) string {
	var result []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			result = append(result, s[i])
			continue
		}
		c := s[i+1]
		// Hex escape: \xHH...
		if c == 'x' && i+2 < len(s) && isHexDigit(s[i+2]) {
			i += 2
			var val byte
			for i < len(s) && isHexDigit(s[i]) {
				val = val*16 + hexValue(s[i])
				i++
			}
			result = append(result, val)
			i--
			continue
		}
		// Octal escape: \N, \NN or \NNN
		if c >= '0' && c <= '7' {
			i++
			var val byte
			for n := 0; n < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7'; n++ {
				val = val*8 + (s[i] - '0')
				i++
			}
			result = append(result, val)
			i--
			continue
		}
		i++
		switch c {
		case 'n':
			result = append(result, '\n')
		case 't':
			result = append(result, '\t')
		case 'r':
			result = append(result, '\r')
		case 'a':
			result = append(result, '\a')
		case 'b':
			result = append(result, '\b')
		case 'f':
			result = append(result, '\f')
		case 'v':
			result = append(result, '\v')
		default:
			result = append(result, c)
		}
	}
	return string(result)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
