package sheet

const (
	DefaultImagesPerRow  = 3
	DefaultOptionsPerRow = 2
)

// Layout holds the presentation-engine row sizes. The zero value uses the
// defaults.
type Layout struct {
	ImagesPerRow  int `json:"images_per_row,omitempty" yaml:"images_per_row"`
	OptionsPerRow int `json:"options_per_row,omitempty" yaml:"options_per_row"`
}

func (l Layout) imagesPerRow() int {
	if l.ImagesPerRow > 0 {
		return l.ImagesPerRow
	}
	return DefaultImagesPerRow
}

func (l Layout) optionsPerRow() int {
	if l.OptionsPerRow > 0 {
		return l.OptionsPerRow
	}
	return DefaultOptionsPerRow
}

// Chunk splits items into consecutive rows of size (the last row may be
// shorter). Empty input yields no rows. Rows are copies, so callers may keep
// them without aliasing the input.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	rows := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		row := make([]T, end-start)
		copy(row, items[start:end])
		rows = append(rows, row)
	}
	return rows
}

// ChunkImages groups images three per row.
func ChunkImages(images []ImageRef) [][]ImageRef { return Chunk(images, DefaultImagesPerRow) }

// ChunkOptions groups options two per row.
func ChunkOptions(options []OptionView) [][]OptionView { return Chunk(options, DefaultOptionsPerRow) }
