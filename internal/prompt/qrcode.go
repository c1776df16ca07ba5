package prompt

import (
	"fmt"
	"strings"
)

// QR parameters for terminal display. Version 2 (25x25) at error correction
// level L holds a verification_uri_complete; the quiet zone is kept small
// because terminal cells are large.
const (
	qrSize      = 25
	qrQuietZone = 2
	qrMaxInput  = 90
)

// renderQRCode draws a QR code of text using Unicode half-block characters,
// two matrix rows per output line.
func renderQRCode(text string) (string, error) {
	m, err := buildQRMatrix(text)
	if err != nil {
		return "", err
	}

	total := qrSize + 2*qrQuietZone
	var b strings.Builder
	for y := 0; y < total; y += 2 {
		for x := 0; x < total; x++ {
			top := m.at(x-qrQuietZone, y-qrQuietZone)
			bottom := m.at(x-qrQuietZone, y-qrQuietZone+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// qrMatrix is a version 2 module matrix. True means a dark module.
type qrMatrix [qrSize][qrSize]bool

// at treats everything outside the matrix as light, which folds the quiet
// zone into rendering.
func (m *qrMatrix) at(x, y int) bool {
	if x < 0 || y < 0 || x >= qrSize || y >= qrSize {
		return false
	}
	return m[y][x]
}

// buildQRMatrix lays out the fixed function patterns and fills in the
// encoded data bits for text.
func buildQRMatrix(text string) (*qrMatrix, error) {
	if text == "" {
		return nil, fmt.Errorf("empty QR input")
	}
	if len(text) > qrMaxInput {
		return nil, fmt.Errorf("input too long for QR version 2: %d characters", len(text))
	}

	var m qrMatrix
	m.placeFinder(0, 0)
	m.placeFinder(0, qrSize-7)
	m.placeFinder(qrSize-7, 0)
	m.placeAlignment(qrSize-9, qrSize-9)

	// Timing patterns on row and column 6
	for i := 8; i < qrSize-8; i++ {
		m[6][i] = i%2 == 0
		m[i][6] = i%2 == 0
	}

	m.placeFormatInfo()

	bits := encodeAlphanumeric(text)
	m.placeData(bits)
	return &m, nil
}

func (m *qrMatrix) placeFinder(top, left int) {
	for i := 0; i < 7; i++ {
		m[top][left+i] = true
		m[top+6][left+i] = true
		m[top+i][left] = true
		m[top+i][left+6] = true
	}
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			m[top+y][left+x] = true
		}
	}
}

func (m *qrMatrix) placeAlignment(top, left int) {
	for i := 0; i < 5; i++ {
		m[top][left+i] = true
		m[top+4][left+i] = true
		m[top+i][left] = true
		m[top+i][left+4] = true
	}
	m[top+2][left+2] = true
}

// placeFormatInfo writes the fixed format bit pattern for version 2-L,
// mask pattern 0.
func (m *qrMatrix) placeFormatInfo() {
	format := [15]bool{true, false, true, false, true, false, false, true,
		false, true, true, false, false, true, false}
	for i := 0; i < 6; i++ {
		m[8][i] = format[i]
		m[i][8] = format[14-i]
	}
	m[7][8] = format[6]
	m[8][8] = format[7]
	m[8][7] = format[8]
}

// encodeAlphanumeric produces the QR alphanumeric-mode bit stream: mode
// indicator, 9-bit count, character pairs at 11 bits (6 for a trailing
// single), padded to a byte boundary. Input is uppercased because the
// alphanumeric charset has no lowercase letters.
func encodeAlphanumeric(text string) []bool {
	text = strings.ToUpper(text)

	bits := []bool{false, false, true, false} // alphanumeric mode 0010
	appendValue := func(v, width int) {
		for i := width - 1; i >= 0; i-- {
			bits = append(bits, v&(1<<i) != 0)
		}
	}

	appendValue(len(text), 9)
	for i := 0; i < len(text); i += 2 {
		if i+1 < len(text) {
			appendValue(alnumValue(text[i])*45+alnumValue(text[i+1]), 11)
		} else {
			appendValue(alnumValue(text[i]), 6)
		}
	}

	for len(bits)%8 != 0 {
		bits = append(bits, false)
	}
	return bits
}

// alnumValue maps a character to its QR alphanumeric value. Characters
// outside the charset map to zero.
func alnumValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	switch c {
	case ' ':
		return 36
	case '$':
		return 37
	case '%':
		return 38
	case '*':
		return 39
	case '+':
		return 40
	case '-':
		return 41
	case '.':
		return 42
	case '/':
		return 43
	case ':':
		return 44
	}
	return 0
}

// placeData walks the standard upward/downward zig-zag over non-reserved
// modules, applying mask pattern 0.
func (m *qrMatrix) placeData(bits []bool) {
	x, y := qrSize-1, qrSize-1
	up := true
	idx := 0

	for x >= 0 && idx < len(bits) {
		if !reserved(x, y) {
			bit := bits[idx]
			if (x+y)%2 == 0 {
				bit = !bit
			}
			m[y][x] = bit
			idx++
		}

		if up {
			if y > 0 {
				y--
				if x%2 == 0 {
					x--
				} else {
					x++
				}
			} else {
				x -= 2
				up = false
			}
		} else {
			if y < qrSize-1 {
				y++
				if x%2 == 0 {
					x--
				} else {
					x++
				}
			} else {
				x -= 2
				up = true
			}
		}

		// Column 6 is entirely timing pattern
		if x == 6 {
			x--
		}
	}
}

// reserved reports whether the position belongs to a function pattern:
// finders with their separators and format strip, the alignment pattern, or
// the timing rows.
func reserved(x, y int) bool {
	if (y < 9 && x < 9) ||
		(y < 9 && x > qrSize-9) ||
		(y > qrSize-9 && x < 9) {
		return true
	}
	if x >= qrSize-9 && x < qrSize-4 && y >= qrSize-9 && y < qrSize-4 {
		return true
	}
	return x == 6 || y == 6
}
