package diagram

// Palette is the fixed entity color cycle. The importer assigns colors in
// definition-encounter order and wraps after eight entries; synthesized
// entities pick the next color from the same cycle.
var Palette = []string{
	"#4E79A7", // blue
	"#F28E2B", // orange
	"#59A14F", // green
	"#E15759", // red
	"#B07AA1", // purple
	"#76B7B2", // teal
	"#EDC948", // yellow
	"#FF9DA7", // pink
}

// PaletteColor returns the palette entry for index i, wrapping around the
// cycle. Negative indices map to the first entry.
func PaletteColor(i int) string {
	if i < 0 {
		i = 0
	}
	return Palette[i%len(Palette)]
}
