package render

// bayer4x4 is the ordered dither pattern, raw values 0..15.
var bayer4x4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// Dither applies 4x4 ordered dithering at pixel (x, y) and truncates each
// channel to 5 bits, emulating a 15-bit colour framebuffer.
func Dither(c Color, x, y int) Color {
	offset := (bayer4x4[y&3][x&3] - 8) / 2 // -4..+3
	return Color{
		R: sat8(int(c.R)+offset) & 0xF8,
		G: sat8(int(c.G)+offset) & 0xF8,
		B: sat8(int(c.B)+offset) & 0xF8,
		A: c.A,
	}
}
