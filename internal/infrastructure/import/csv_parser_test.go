package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("Valid UTF-8 export", func(t *testing.T) {
		data := "Order Number,Buyer Username\n110552010621,collector_88"
		parser, err := NewCSVParser(strings.NewReader(data))

		require.NoError(t, err)
		require.NotNil(t, parser)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		// UTF-8 BOM: 0xEF, 0xBB, 0xBF
		data := "\xEF\xBB\xBFOrder Number,Total\n110552010621,24.99"
		parser, err := NewCSVParser(strings.NewReader(data))

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		headers := parser.Headers()
		assert.Equal(t, "Order Number", headers[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))

		assert.Error(t, err)
		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid encoding returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("Order Number\n\xff\xfe110552"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		data := "Item Number;Title\n204115566778;Vintage camera"
		parser, err := NewCSVParser(strings.NewReader(data), WithDelimiter(';'))

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"Item Number", "Title"}, parser.Headers())
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		data := "Order Number,Buyer Username,Total\n110552010621,collector_88,24.99"
		parser, _ := NewCSVParser(strings.NewReader(data))

		require.NoError(t, parser.ParseHeader())
		assert.True(t, parser.HasHeader("Order Number"))
		assert.False(t, parser.HasHeader("Item Number"))
	})

	t.Run("Headers are trimmed", func(t *testing.T) {
		data := " Order Number , Total \n110552010621,24.99"
		parser, _ := NewCSVParser(strings.NewReader(data))

		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"Order Number", "Total"}, parser.Headers())
	})

	t.Run("Header only file", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("Order Number,Total"))
		require.NoError(t, parser.ParseHeader())

		_, err := parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})
}

func TestReadRow(t *testing.T) {
	t.Run("Maps fields to headers", func(t *testing.T) {
		data := "Order Number,Buyer Username\n110552010621,collector_88"
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "110552010621", row.Get("Order Number"))
		assert.Equal(t, "collector_88", row.Get("Buyer Username"))
	})

	t.Run("Short row is padded with empty values", func(t *testing.T) {
		data := "Order Number,Buyer Username,Total\n110552010621,collector_88"
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "", row.Get("Total"))
		assert.Equal(t, "fallback", row.GetOrDefault("Total", "fallback"))
	})

	t.Run("Excel guard values are unwrapped", func(t *testing.T) {
		data := "Order Number,Total\n" + `="110552010621",24.99`
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "110552010621", row.Get("Order Number"))
	})

	t.Run("Guard unwrap can be disabled", func(t *testing.T) {
		data := "Order Number\n" + `="110552010621"`
		parser, _ := NewCSVParser(strings.NewReader(data), WithExcelGuardUnwrap(false))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, `="110552010621"`, row.Get("Order Number"))
	})

	t.Run("Download trailer line is treated as EOF", func(t *testing.T) {
		data := "Order Number,Total\n110552010621,24.99\n2 record(s) downloaded."
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "110552010621", row.Get("Order Number"))

		_, err = parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})
}

func TestReadAllRows(t *testing.T) {
	t.Run("Skips blank rows and trailer", func(t *testing.T) {
		data := "Order Number,Total\n110552010621,24.99\n,\n110552010622,12.00\n2 record(s) downloaded.\n"
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "110552010622", rows[1].Get("Order Number"))
	})

	t.Run("Preserves line numbers past skipped rows", func(t *testing.T) {
		data := "Order Number\n110552010621\n\n110552010622"
		parser, _ := NewCSVParser(strings.NewReader(data))
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "110552010621", rows[0].Get("Order Number"))
		assert.Equal(t, "110552010622", rows[1].Get("Order Number"))
	})
}

func TestValidateHeaders(t *testing.T) {
	data := "Order Number,Buyer Username\n110552010621,collector_88"
	parser, _ := NewCSVParser(strings.NewReader(data))
	require.NoError(t, parser.ParseHeader())

	assert.Empty(t, parser.ValidateHeaders([]string{"Order Number"}))
	assert.Equal(t, []string{"Item Number"}, parser.ValidateHeaders([]string{"Item Number"}))
}

func TestRow_IsEmpty(t *testing.T) {
	empty := &Row{Data: map[string]string{"Order Number": "", "Total": ""}}
	assert.True(t, empty.IsEmpty())

	populated := &Row{Data: map[string]string{"Order Number": "110552010621"}}
	assert.False(t, populated.IsEmpty())
}
