package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/scrubber/tabular"
)

func sampleReport() *Report {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Report{
		Dirty:    "dirty",
		Clean:    "clean",
		Profile:  "gis",
		Started:  start,
		Finished: start.Add(2 * time.Second),
		Files: []FileResult{
			{
				Source:          "dirty/2020 sites.csv",
				Output:          "clean/sites_2020.csv",
				Format:          "delimited",
				Status:          StatusScrubbed,
				FilenameChanged: true,
				HeaderChanged:   true,
				Bytes:           2048,
				Tables: []tabular.TableResult{{
					Header:         []string{"Site Name", "pH"},
					ScrubbedHeader: []string{"Site_Name", "pH"},
					HeaderChanged:  true,
				}},
			},
			{
				Source:  "dirty/book.xlsx",
				Output:  "clean/book.xlsx",
				Format:  "workbook",
				Status:  StatusScrubbed,
				Bytes:   10,
				Tables: []tabular.TableResult{{
					Title:          "My Data",
					ScrubbedTitle:  "My_Data",
					TitleChanged:   true,
					Header:         []string{"a"},
					ScrubbedHeader: []string{"a"},
				}},
				TitleChanged: true,
			},
			{
				Source: "dirty/broken.csv",
				Status: StatusFailed,
				Err:    errors.New("input unreadable: no delimiter"),
			},
			{
				Source: "dirty/notes.doc",
				Status: StatusSkipped,
				Err:    tabular.ErrUnsupportedFormat,
			},
		},
	}
}

func TestCounts(t *testing.T) {
	scrubbed, failed, skipped := sampleReport().Counts()
	assert.Equal(t, 2, scrubbed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Scrubbing dirty/2020 sites.csv:\n")
	assert.Contains(t, out, "\tFilename errors found and corrected.\n")
	assert.Contains(t, out, "\tHeader errors found and corrected.\n")
	assert.Contains(t, out, "\tWrote clean/sites_2020.csv (2.0 kB).\n")

	assert.Contains(t, out, "Scrubbing dirty/book.xlsx:\n\tNo file naming errors found.\n")
	assert.Contains(t, out, "\tSheet \"My Data\": title corrected as \"My_Data\".\n")
	assert.Contains(t, out, "\tNo header errors found.\n")

	assert.Contains(t, out, "Scrubbing dirty/broken.csv:\n\tFailed: input unreadable: no delimiter\n")
	assert.Contains(t, out, "Skipping dirty/notes.doc: unsupported file type\n")
	assert.True(t, strings.HasSuffix(out, "Scrubbed 2 file(s), 1 failed, 1 skipped.\n"))
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatYAML))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Files, 4)
	assert.Equal(t, "gis", got.Profile)
	assert.Equal(t, StatusScrubbed, got.Files[0].Status)
	assert.Equal(t, []string{"Site_Name", "pH"}, got.Files[0].Tables[0].ScrubbedHeader)
	assert.Equal(t, "input unreadable: no delimiter", got.Files[2].Error)
	assert.Equal(t, "unsupported file type", got.Files[3].Error)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "dirty", got["dirty"])
	assert.Equal(t, "2024-03-01T12:00:00Z", got["started"])

	files, ok := got["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 4)

	first := files[0].(map[string]any)
	assert.Equal(t, "clean/sites_2020.csv", first["output"])
	assert.Equal(t, float64(2048), first["bytes"])
	assert.Equal(t, true, first["filename_changed"])

	failed := files[2].(map[string]any)
	assert.Equal(t, "failed", failed["status"])
	assert.Equal(t, "input unreadable: no delimiter", failed["error"])
	assert.NotContains(t, failed, "output")
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := sampleReport().Write(&buf, "xml")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
