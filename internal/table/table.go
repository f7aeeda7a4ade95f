// Package table renders rows of values as fixed-width ASCII tables.
//
// Cells are word-wrapped to fit a maximum total width, aligned per column
// both horizontally and vertically, and framed with configurable glyphs.
// Rendering is deterministic: the same rows and settings always produce the
// same text.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxWidth is the total line width a new table is fitted into.
const DefaultMaxWidth = 80

// DefaultPrecision is the number of fractional digits used by the numeric
// datatypes.
const DefaultPrecision = 3

var (
	// ErrStructure is returned when a header, row, or column setting does not
	// match the column count fixed by the first one supplied.
	ErrStructure = errors.New("table structure mismatch")

	// ErrSizing is returned when the maximum width cannot hold even one
	// character per column plus decorations.
	ErrSizing = errors.New("max width too low to render data")
)

// Deco is a set of decoration flags.
type Deco uint8

const (
	Border Deco = 1 << iota // frame around the table
	Header                  // rule below the header row
	HLines                  // rules between body rows
	VLines                  // rules between columns
)

// DefaultDeco enables every decoration.
const DefaultDeco = Border | Header | HLines | VLines

// Align is a horizontal alignment.
type Align byte

const (
	AlignLeft   Align = 'l'
	AlignCenter Align = 'c'
	AlignRight  Align = 'r'
)

// VAlign is a vertical alignment inside a multi-line row.
type VAlign byte

const (
	VAlignTop    VAlign = 't'
	VAlignMiddle VAlign = 'm'
	VAlignBottom VAlign = 'b'
)

// Chars is the glyph set used to draw rules and column separators.
type Chars struct {
	Horizontal rune
	Vertical   rune
	Corner     rune
	Header     rune
}

// DefaultChars are the glyphs a new table draws with.
var DefaultChars = Chars{Horizontal: '-', Vertical: '|', Corner: '+', Header: '='}

// Table accumulates a header and rows and renders them as text.
type Table struct {
	maxWidth  int
	precision int
	deco      Deco
	chars     Chars

	ncols  int
	header []string
	rows   [][]string

	headerAlign []Align
	align       []Align
	valign      []VAlign
	dtypes      []DType
	widths      []int
}

// New returns an empty table with default settings.
func New() *Table {
	return &Table{
		maxWidth:  DefaultMaxWidth,
		precision: DefaultPrecision,
		deco:      DefaultDeco,
		chars:     DefaultChars,
	}
}

// SetMaxWidth sets the maximum total line width. Zero means unlimited.
func (t *Table) SetMaxWidth(width int) error {
	if width < 0 {
		return fmt.Errorf("max width must be >= 0, got %d", width)
	}
	t.maxWidth = width
	return nil
}

// SetPrecision sets the number of fractional digits for numeric datatypes.
func (t *Table) SetPrecision(precision int) error {
	if precision < 0 {
		return fmt.Errorf("precision must be >= 0, got %d", precision)
	}
	t.precision = precision
	return nil
}

// SetDeco replaces the decoration flags.
func (t *Table) SetDeco(deco Deco) {
	t.deco = deco
}

// SetChars replaces the glyph set.
func (t *Table) SetChars(chars Chars) {
	t.chars = chars
}

// SetHeaderAlign sets the horizontal alignment of header cells.
func (t *Table) SetHeaderAlign(align ...Align) error {
	if err := validateAligns(align); err != nil {
		return err
	}
	if err := t.checkRowSize(len(align)); err != nil {
		return err
	}
	t.headerAlign = align
	return nil
}

// SetColsAlign sets the horizontal alignment of body cells.
func (t *Table) SetColsAlign(align ...Align) error {
	if err := validateAligns(align); err != nil {
		return err
	}
	if err := t.checkRowSize(len(align)); err != nil {
		return err
	}
	t.align = align
	return nil
}

// SetColsVAlign sets the vertical alignment of body cells.
func (t *Table) SetColsVAlign(valign ...VAlign) error {
	for _, v := range valign {
		switch v {
		case VAlignTop, VAlignMiddle, VAlignBottom:
		default:
			return fmt.Errorf("invalid vertical alignment %q", rune(v))
		}
	}
	if err := t.checkRowSize(len(valign)); err != nil {
		return err
	}
	t.valign = valign
	return nil
}

// SetColsDType sets the datatype used to format cells of subsequently added
// rows.
func (t *Table) SetColsDType(dtypes ...DType) error {
	if err := t.checkRowSize(len(dtypes)); err != nil {
		return err
	}
	t.dtypes = dtypes
	return nil
}

// SetColsWidth fixes column widths. A zero entry keeps the natural width of
// that column. Explicit widths bypass fitting to the maximum width.
func (t *Table) SetColsWidth(widths ...int) error {
	for i, w := range widths {
		if w < 0 {
			return fmt.Errorf("column %d: width must be >= 0, got %d", i+1, w)
		}
	}
	if err := t.checkRowSize(len(widths)); err != nil {
		return err
	}
	t.widths = widths
	return nil
}

// Header sets the header row. Header values are rendered as plain text.
func (t *Table) Header(cells ...any) error {
	if err := t.checkRowSize(len(cells)); err != nil {
		return err
	}
	t.header = make([]string, len(cells))
	for i, c := range cells {
		t.header[i] = toText(c)
	}
	return nil
}

// AddRow appends a body row, formatting each cell with its column datatype.
func (t *Table) AddRow(cells ...any) error {
	if err := t.checkRowSize(len(cells)); err != nil {
		return err
	}
	row := make([]string, len(cells))
	for i, c := range cells {
		dt := Auto
		if i < len(t.dtypes) {
			dt = t.dtypes[i]
		}
		row[i] = dt.format(c, t.precision)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Reset removes the header and all rows. Column settings are kept.
func (t *Table) Reset() {
	t.header = nil
	t.rows = nil
}

// Len returns the number of body rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// checkRowSize fixes the column count on first use and rejects later
// mismatches.
func (t *Table) checkRowSize(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrStructure)
	}
	if t.ncols == 0 {
		t.ncols = n
		return nil
	}
	if n != t.ncols {
		return fmt.Errorf("%w: got %d columns, want %d", ErrStructure, n, t.ncols)
	}
	return nil
}

func validateAligns(align []Align) error {
	for _, a := range align {
		switch a {
		case AlignLeft, AlignCenter, AlignRight:
		default:
			return fmt.Errorf("invalid alignment %q", rune(a))
		}
	}
	return nil
}

// Render draws the table. An empty table renders as the empty string. The
// result has no trailing newline.
func (t *Table) Render() (string, error) {
	if len(t.header) == 0 && len(t.rows) == 0 {
		return "", nil
	}

	widths, err := t.columnWidths()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if t.deco&Border != 0 {
		b.WriteString(t.hline(widths, false))
	}
	if len(t.header) > 0 {
		t.drawLine(&b, t.header, widths, true)
		if t.deco&Header != 0 {
			b.WriteString(t.hline(widths, true))
		}
	}
	for i, row := range t.rows {
		t.drawLine(&b, row, widths, false)
		if t.deco&HLines != 0 && i < len(t.rows)-1 {
			b.WriteString(t.hline(widths, false))
		}
	}
	if t.deco&Border != 0 {
		b.WriteString(t.hline(widths, false))
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// columnWidths computes natural widths and, when they overflow the maximum
// width, shrinks them by round-robin allocation of the available space.
func (t *Table) columnWidths() ([]int, error) {
	natural := make([]int, t.ncols)
	measure := func(cells []string) {
		for i, cell := range cells {
			if w := cellWidth(cell); w > natural[i] {
				natural[i] = w
			}
		}
	}
	if len(t.header) > 0 {
		measure(t.header)
	}
	for _, row := range t.rows {
		measure(row)
	}

	if t.widths != nil {
		for i, w := range t.widths {
			if w > 0 {
				natural[i] = w
			}
		}
		return natural, nil
	}

	overhead := 3 * (t.ncols - 1)
	if t.deco&Border != 0 {
		overhead += 4
	}
	content := 0
	for _, w := range natural {
		content += w
	}
	if t.maxWidth == 0 || content+overhead <= t.maxWidth {
		return natural, nil
	}
	if t.maxWidth < t.ncols+overhead {
		return nil, fmt.Errorf("%w: %d columns need at least %d, max width is %d",
			ErrSizing, t.ncols, t.ncols+overhead, t.maxWidth)
	}

	available := t.maxWidth - overhead
	fitted := make([]int, t.ncols)
	for i := 0; available > 0; i = (i + 1) % t.ncols {
		if fitted[i] < natural[i] {
			fitted[i]++
			available--
		}
	}
	return fitted, nil
}

func (t *Table) hline(widths []int, header bool) string {
	horiz := string(t.chars.Horizontal)
	if header {
		horiz = string(t.chars.Header)
	}
	mid := horiz
	if t.deco&VLines != 0 {
		mid = string(t.chars.Corner)
	}
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat(horiz, w)
	}
	line := strings.Join(parts, horiz+mid+horiz)
	if t.deco&Border != 0 {
		corner := string(t.chars.Corner)
		line = corner + horiz + line + horiz + corner
	}
	return line + "\n"
}

func (t *Table) drawLine(b *strings.Builder, cells []string, widths []int, isHeader bool) {
	columns := t.splitRow(cells, widths, isHeader)
	vert := string(t.chars.Vertical)
	sep := "   "
	if t.deco&VLines != 0 {
		sep = " " + vert + " "
	}

	for l := range columns[0] {
		if t.deco&Border != 0 {
			b.WriteString(vert + " ")
		}
		for col, lines := range columns {
			text := lines[l]
			fill := widths[col] - displayWidth(text)
			if fill < 0 {
				fill = 0
			}
			switch t.alignAt(col, isHeader) {
			case AlignRight:
				b.WriteString(strings.Repeat(" ", fill) + text)
			case AlignCenter:
				b.WriteString(strings.Repeat(" ", fill/2) + text + strings.Repeat(" ", fill/2+fill%2))
			default:
				b.WriteString(text + strings.Repeat(" ", fill))
			}
			if col < len(columns)-1 {
				b.WriteString(sep)
			}
		}
		if t.deco&Border != 0 {
			b.WriteString(" " + vert)
		}
		b.WriteString("\n")
	}
}

// splitRow wraps every cell to its column width and pads the results to a
// common height according to vertical alignment.
func (t *Table) splitRow(cells []string, widths []int, isHeader bool) [][]string {
	columns := make([][]string, len(cells))
	height := 0
	for i, cell := range cells {
		var lines []string
		for _, line := range strings.Split(cell, "\n") {
			if strings.TrimSpace(line) == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, wrap(line, widths[i])...)
		}
		columns[i] = lines
		if len(lines) > height {
			height = len(lines)
		}
	}

	for i, lines := range columns {
		missing := height - len(lines)
		if missing == 0 {
			continue
		}
		valign := VAlignTop
		if !isHeader && i < len(t.valign) {
			valign = t.valign[i]
		}
		switch valign {
		case VAlignMiddle:
			columns[i] = append(append(blank(missing/2), lines...), blank(missing/2+missing%2)...)
		case VAlignBottom:
			columns[i] = append(blank(missing), lines...)
		default:
			columns[i] = append(lines, blank(missing)...)
		}
	}
	return columns
}

func (t *Table) alignAt(col int, isHeader bool) Align {
	if isHeader {
		if col < len(t.headerAlign) {
			return t.headerAlign[col]
		}
		return AlignCenter
	}
	if col < len(t.align) {
		return t.align[col]
	}
	return AlignLeft
}

func blank(n int) []string {
	return make([]string, n)
}
