package tabular

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/scrubber/dialect"
	"github.com/lehigh-university-libraries/scrubber/scrub"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDelimitedRewrite(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          string
		headerChanged bool
	}{
		{
			name:          "comma relocates numbered field",
			input:         "Name,1Code,Value\nAlice,7,3.5\nBob,8,4.0\n",
			want:          "Name,Code_1,Value\nAlice,7,3.5\nBob,8,4.0\n",
			headerChanged: true,
		},
		{
			name:          "tab with crlf and quoted data",
			input:         "Site Name\tpH (field)\r\n\"North, upper\"\t7.1\r\nSouth\t\"6\"\"\"\r\n",
			want:          "Site_Name\tpH_field\r\nNorth, upper\t7.1\r\nSouth\t\"6\"\"\"\r\n",
			headerChanged: true,
		},
		{
			name:          "clean header untouched",
			input:         "a;b\r1;2\r",
			want:          "a;b\r1;2\r",
			headerChanged: false,
		},
		{
			name:          "collisions are kept",
			input:         "A!,A?\n1,2\n",
			want:          "A,A\n1,2\n",
			headerChanged: true,
		},
		{
			name:          "blank lines preserved",
			input:         "x y,z\n\n1,2\n",
			want:          "x_y,z\n\n1,2\n",
			headerChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writeFile(t, dir, "in.csv", tt.input)
			dst := filepath.Join(dir, "out.csv")

			result, err := Process(DefaultRegistry, src, dst, scrub.Default(), nil)
			require.NoError(t, err)

			got, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.headerChanged, result.HeaderChanged())
			assert.False(t, result.TitleChanged())
			assert.Equal(t, int64(len(tt.want)), result.Bytes)
			require.Len(t, result.Tables, 1)
		})
	}
}

func TestDelimitedRoundTripRecords(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.csv", "Name,1Code,Value\nAlice,7,3.5\n\"Smith, Bob\",8,4.0\n")
	dst := filepath.Join(dir, "out.csv")

	_, err := Process(DefaultRegistry, src, dst, scrub.Default(), nil)
	require.NoError(t, err)

	before := readRecords(t, src)
	after := readRecords(t, dst)

	require.Len(t, after, len(before))
	assert.Equal(t, []string{"Name", "Code_1", "Value"}, after[0])
	assert.Equal(t, before[1:], after[1:])
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d, err := dialect.Detect(f, dialect.NewSniffer(), dialect.DefaultSampleSize)
	require.NoError(t, err)

	var records [][]string
	r := dialect.NewReader(f, d)
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		records = append(records, rec)
	}
	return records
}

func TestDelimitedNoDelimiter(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "single.txt", "Name\nAlice\nBob\n")
	dst := filepath.Join(dir, "out.txt")

	_, err := Process(DefaultRegistry, src, dst, scrub.Default(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputUnreadable))
	assert.True(t, errors.Is(err, dialect.ErrNoDelimiter))

	assert.NoFileExists(t, dst)
	assertNoTempFiles(t, dir)
}

func TestDelimitedMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Process(DefaultRegistry, filepath.Join(dir, "gone.csv"), filepath.Join(dir, "out.csv"), scrub.Default(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDelimitedCustomSniffer(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.txt", "one column\nvalue\n")
	dst := filepath.Join(dir, "out.txt")

	opts := &OpenOptions{
		Sniffer:    dialect.SnifferFunc(func([]byte) (dialect.Dialect, error) { return dialect.Tab, nil }),
		SampleSize: 16,
	}
	result, err := Process(DefaultRegistry, src, dst, scrub.Default(), opts)
	require.NoError(t, err)
	assert.True(t, result.HeaderChanged())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "one_column\nvalue\n", string(got))
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.csv")

	_, err := WriteAtomic(dst, func(w io.Writer) (int64, error) {
		_, _ = w.Write([]byte("partial"))
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.NoFileExists(t, dst)
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRegistryLookup(t *testing.T) {
	tests := []struct {
		filename string
		handler  string
	}{
		{"a.csv", "delimited"},
		{"a.TSV", "delimited"},
		{"notes.txt", "delimited"},
		{"book.xlsx", "workbook"},
		{"dir.v1/book.xlsx", "workbook"},
	}
	for _, tt := range tests {
		h, err := Lookup(tt.filename)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.handler, h.Name(), tt.filename)
	}

	for _, name := range []string{"old.xls", "_empty", "README", "x.csv.bak"} {
		_, err := Lookup(name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}

	assert.Equal(t, []string{"csv", "tsv", "txt", "xlsx"}, DefaultRegistry.Extensions())
}
