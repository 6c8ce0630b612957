package avatar

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an HSL triple. Saturation and lightness are percentages.
type Color struct {
	H float64
	S float64
	L float64
}

// CSS renders the color in CSS Color 4 space-separated syntax.
func (c Color) CSS() string {
	return fmt.Sprintf("hsl(%g %g%% %g%%)", c.H, c.S, c.L)
}

// Hex renders the color as #rrggbb for terminals and other non-CSS sinks.
func (c Color) Hex() string {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped().Hex()
}

var palette = [...]Color{
	{32, 95, 44},  // saffron
	{0, 84, 51},   // paprika
	{142, 76, 36}, // herb
	{0, 84, 60},   // cherry
	{45, 93, 58},  // butter
	{84, 81, 44},  // olive
	{16, 85, 55},  // carrot
	{260, 90, 55}, // eggplant
	{50, 100, 50}, // lemon
	{25, 75, 47},  // cinnamon
}

// DefaultColor is used when there is no session to hash.
var DefaultColor = Color{30, 10, 45}

// Palette returns a copy of the avatar palette.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette[:])
	return out
}

// ColorFor returns the avatar color for a session id.
func ColorFor(session string) Color {
	if session == "" {
		return DefaultColor
	}
	return palette[Index(session, len(palette))]
}
