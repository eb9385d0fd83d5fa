package ingest

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/flightparser/internal/core"
	"github.com/JonMunkholm/flightparser/internal/metrics"
)

const sampleFile = `# flight_id,origin,destination,departure,arrival,price
AB12,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150

AB12,NYC,LAX,2024-01-01 10:00,2024-01-01 08:00,100
   # indented comment
A,NY,LAXX,2024-13-40 99:99,bad,-5
CD34 , SFO , SEA , 2024-02-01 07:00 , 2024-02-01 09:10 , 89.90
too,few
`

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line   string
		fields []string
		kind   LineKind
	}{
		{"", nil, LineBlank},
		{"   \t", nil, LineBlank},
		{"# header", nil, LineComment},
		{"   #indented", nil, LineComment},
		{"a, b ,c", []string{"a", "b", "c"}, LineData},
		{`"AB,12",x`, []string{`"AB`, `12"`, "x"}, LineData},
		{"a,,b", []string{"a", "", "b"}, LineData},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			fields, kind := SplitLine(tt.line)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestParseReader(t *testing.T) {
	m := metrics.New("test")
	p := NewParser(m, nil)

	res, err := p.ParseReader(context.Background(), "sample.csv", strings.NewReader(sampleFile))
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "AB12", res.Records[0].FlightID)
	assert.Equal(t, core.FlightRecord{
		FlightID:          "CD34",
		Origin:            "SFO",
		Destination:       "SEA",
		DepartureDatetime: "2024-02-01 07:00",
		ArrivalDatetime:   "2024-02-01 09:10",
		Price:             89.90,
	}, res.Records[1])

	require.Len(t, res.Issues, 5)
	lines := make([]int, len(res.Issues))
	for i, d := range res.Issues {
		lines[i] = d.Line
	}
	assert.Equal(t, []int{1, 4, 5, 6, 8}, lines)

	assert.Equal(t, core.IssueComment, res.Issues[0].Kind)
	assert.Equal(t, "# flight_id,origin,destination,departure,arrival,price", res.Issues[0].Raw)
	assert.Equal(t, "# indented comment", res.Issues[2].Raw)

	assert.Equal(t, "Line 4: AB12,NYC,LAX,2024-01-01 10:00,2024-01-01 08:00,100 → arrival before departure",
		res.Issues[1].String())
	assert.Equal(t, []string{core.ReasonMissingFields}, res.Issues[4].Reasons)
	assert.Equal(t, 3, res.Rejected())
	assert.Equal(t, 8, res.Lines)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues(metrics.RowValid)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues(metrics.RowRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues(metrics.RowComment)))
}

func TestParseReader_BOMAndCRLF(t *testing.T) {
	input := "\xEF\xBB\xBFAB12,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150\r\n# c\r\n"

	res, err := (&Parser{}).ParseReader(context.Background(), "bom.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "AB12", res.Records[0].FlightID)
	assert.Equal(t, 150.0, res.Records[0].Price)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "# c", res.Issues[0].Raw)
	assert.Equal(t, int64(len(input)), res.Bytes)
}

func TestParseReader_LoneCR(t *testing.T) {
	input := "# header\rAB12,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150\r\rX,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,90"

	res, err := (&Parser{}).ParseReader(context.Background(), "mac.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Lines)
	require.Len(t, res.Records, 1)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 1, res.Issues[0].Line)
	assert.Equal(t, 4, res.Issues[1].Line)
	assert.Equal(t, []string{core.ReasonInvalidFlightID}, res.Issues[1].Reasons)
}

func TestScanLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lf", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"lone cr", "a\rb\r", []string{"a", "b"}},
		{"mixed", "a\r\nb\rc\nd", []string{"a", "b", "c", "d"}},
		{"blank between cr", "a\r\rb", []string{"a", "", "b"}},
		{"cr then crlf", "a\r\r\nb", []string{"a", "", "b"}},
		{"no terminator", "a", []string{"a"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := newLineReader(strings.NewReader(tt.input), 0)
			var got []string
			for {
				line, ok := lines.Next()
				if !ok {
					break
				}
				got = append(got, line)
			}
			require.NoError(t, lines.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanLines_CRAtReadBoundary(t *testing.T) {
	lines := newLineReader(iotest.OneByteReader(strings.NewReader("a\r\nb\rc")), 0)
	var got []string
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	require.NoError(t, lines.Err())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestParseReader_InvalidUTF8(t *testing.T) {
	input := "AB\xff2,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150\n"

	res, err := (&Parser{}).ParseReader(context.Background(), "bad.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "AB\uFFFD2,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150", res.Issues[0].Raw)
	assert.Equal(t, []string{core.ReasonInvalidFlightID}, res.Issues[0].Reasons)
}

func TestParseReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := strings.Repeat("AB12,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150\n", ContextCheckInterval+1)
	_, err := (&Parser{}).ParseReader(ctx, "big.csv", strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseReader_LineTooLong(t *testing.T) {
	p := &Parser{MaxLineBytes: 32}
	input := "AB12,NYC,LAX,2024-01-01 08:00,2024-01-01 11:00,150\n"

	_, err := p.ParseReader(context.Background(), "", strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, bufio.ErrTooLong))
	assert.True(t, errors.Is(err, core.ErrTooLarge))
	assert.Contains(t, err.Error(), "reading input")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := (&Parser{}).ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileAccess))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseFile_Directory(t *testing.T) {
	_, err := (&Parser{}).ParseFile(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileAccess))
}

func TestParseFile_ErrorCodeIgnoresPathWords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prices_datetime_code.csv")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := (&Parser{}).ParseFile(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, "FILE002", core.MapError(err).Code)

	_, err = (&Parser{}).ParseFile(context.Background(), filepath.Join(dir, "price.csv"))
	require.Error(t, err)
	assert.Equal(t, "FILE001", core.MapError(err).Code)
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "BB22,JFK,LAX,2024-01-02 08:00,2024-01-02 11:00,200\nbad\n")
	writeFile(t, dir, "a.CSV", "AA11,JFK,SFO,2024-01-01 08:00,2024-01-01 11:00,100\n")
	writeFile(t, dir, "notes.txt", "CC33,JFK,SFO,2024-01-01 08:00,2024-01-01 11:00,100\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	batch, err := (&Parser{}).ParseDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, batch.Files)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "AA11", batch.Records[0].FlightID)
	assert.Equal(t, "BB22", batch.Records[1].FlightID)
	require.Len(t, batch.Issues, 1)
	assert.Equal(t, 2, batch.Issues[0].Line)
	assert.Equal(t, filepath.Join(dir, "b.csv"), batch.Issues[0].File)
	assert.Empty(t, batch.Failures)
}

func TestParseDir_IsolatesFileFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := t.TempDir()
	writeFile(t, dir, "good.csv", "AA11,JFK,SFO,2024-01-01 08:00,2024-01-01 11:00,100\n")
	locked := writeFile(t, dir, "locked.csv", "BB22,JFK,LAX,2024-01-02 08:00,2024-01-02 11:00,200\n")
	require.NoError(t, os.Chmod(locked, 0o000))

	batch, err := (&Parser{}).ParseDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, locked, batch.Failures[0].File)
	assert.True(t, errors.Is(batch.Failures[0].Err, ErrFileAccess))
}

func TestParseDir_Missing(t *testing.T) {
	_, err := (&Parser{}).ParseDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileAccess))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
