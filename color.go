// Package wtmux provides the core terminal emulation for the wtmux
// multiplexer: cells, colors, the escape-sequence parser, the terminal
// screen state with scrollback, and the PTY session layer.
//
// Frontend packages (cli, wm) compose these into the tiled multiplexer.
package wtmux

import "strconv"

// ColorType indicates how a color was specified.
type ColorType uint8

const (
	ColorTypeDefault   ColorType = iota // Terminal default fg/bg (SGR 39/49)
	ColorTypeStandard                   // Standard 16 ANSI colors (0-15)
	ColorTypePalette                    // 256-color palette (0-255)
	ColorTypeTrueColor                  // 24-bit RGB
)

// Color represents a terminal color with its original specification
// preserved, so emission to the host can round-trip the same SGR form
// the child sent.
type Color struct {
	Type    ColorType // How the color was specified
	Index   uint8     // For Standard (0-15) or Palette (0-255)
	R, G, B uint8     // For TrueColor, or resolved RGB for display
}

// Predefined colors
var (
	DefaultForeground = Color{Type: ColorTypeDefault, R: 212, G: 212, B: 212}
	DefaultBackground = Color{Type: ColorTypeDefault, R: 30, G: 30, B: 30}
)

// RGB is a plain color triple.
type RGB struct {
	R, G, B uint8
}

// ANSIColorsRGB is the default RGB rendering of the 16 standard colors.
var ANSIColorsRGB = [16]RGB{
	{0, 0, 0},       // 0 black
	{205, 49, 49},   // 1 red
	{13, 188, 121},  // 2 green
	{229, 229, 16},  // 3 yellow
	{36, 114, 200},  // 4 blue
	{188, 63, 188},  // 5 magenta
	{17, 168, 205},  // 6 cyan
	{229, 229, 229}, // 7 white
	{102, 102, 102}, // 8 bright black
	{241, 76, 76},   // 9 bright red
	{35, 209, 139},  // 10 bright green
	{245, 245, 67},  // 11 bright yellow
	{59, 142, 234},  // 12 bright blue
	{214, 112, 214}, // 13 bright magenta
	{41, 184, 219},  // 14 bright cyan
	{255, 255, 255}, // 15 bright white
}

// StandardColor creates a standard 16-color ANSI color (index 0-15).
func StandardColor(index int) Color {
	if index < 0 || index > 15 {
		index = 7
	}
	rgb := ANSIColorsRGB[index]
	return Color{Type: ColorTypeStandard, Index: uint8(index), R: rgb.R, G: rgb.G, B: rgb.B}
}

// PaletteColor creates a 256-color palette color (index 0-255).
func PaletteColor(index int) Color {
	if index < 0 || index > 255 {
		index = 7
	}
	rgb := Get256ColorRGB(index)
	return Color{Type: ColorTypePalette, Index: uint8(index), R: rgb.R, G: rgb.G, B: rgb.B}
}

// TrueColor creates a 24-bit true color.
func TrueColor(r, g, b uint8) Color {
	return Color{Type: ColorTypeTrueColor, R: r, G: g, B: b}
}

// Get256ColorRGB resolves a 256-color palette index to RGB.
func Get256ColorRGB(idx int) RGB {
	switch {
	case idx < 0 || idx > 255:
		return ANSIColorsRGB[7]
	case idx < 16:
		return ANSIColorsRGB[idx]
	case idx < 232:
		// 6x6x6 color cube
		idx -= 16
		levels := [6]uint8{0, 95, 135, 175, 215, 255}
		return RGB{
			R: levels[idx/36],
			G: levels[(idx/6)%6],
			B: levels[idx%6],
		}
	default:
		// Grayscale ramp
		v := uint8(8 + (idx-232)*10)
		return RGB{R: v, G: v, B: v}
	}
}

// IsDefault returns true if this is the default fg/bg color.
func (c Color) IsDefault() bool {
	return c.Type == ColorTypeDefault
}

// ToSGRCode returns the SGR color code(s) for this color
// (foreground if isFg is true).
func (c Color) ToSGRCode(isFg bool) string {
	switch c.Type {
	case ColorTypeDefault:
		if isFg {
			return "39"
		}
		return "49"
	case ColorTypeStandard:
		idx := int(c.Index)
		if idx < 8 {
			if isFg {
				return strconv.Itoa(30 + idx)
			}
			return strconv.Itoa(40 + idx)
		}
		if isFg {
			return strconv.Itoa(90 + idx - 8)
		}
		return strconv.Itoa(100 + idx - 8)
	case ColorTypePalette:
		if isFg {
			return "38;5;" + strconv.Itoa(int(c.Index))
		}
		return "48;5;" + strconv.Itoa(int(c.Index))
	case ColorTypeTrueColor:
		base := "48;2;"
		if isFg {
			base = "38;2;"
		}
		return base + strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
	}
	return ""
}
