package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPreviewType(t *testing.T) {
	cases := map[string]string{
		"sample.csv":    PreviewGrid,
		"SAMPLE.CSV":    PreviewGrid,
		"delivery.tsv":  PreviewGrid,
		"payload.json":  PreviewJSON,
		"chart.png":     PreviewImage,
		"photo.JPG":     PreviewImage,
		"notes.txt":     PreviewText,
		"no_extension":  PreviewText,
		"archive.xlsx":  PreviewText,
		"dump.csv.json": PreviewJSON,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectPreviewType(name), "file %s", name)
	}
}

func TestBuildPreviewCSV(t *testing.T) {
	data := []byte("trade_id,amount\nT1,100\nT2,250\n")

	preview, err := BuildPreview("trades.csv", data)
	require.NoError(t, err)

	assert.Equal(t, PreviewGrid, preview.Type)
	assert.Equal(t, []string{"trade_id", "amount"}, preview.Columns)
	require.Len(t, preview.Rows, 2)
	assert.Equal(t, []string{"T2", "250"}, preview.Rows[1])
}

func TestBuildPreviewTSV(t *testing.T) {
	data := []byte("id\tname\n1\talpha\n")

	preview, err := BuildPreview("export.tsv", data)
	require.NoError(t, err)

	assert.Equal(t, PreviewGrid, preview.Type)
	assert.Equal(t, []string{"id", "name"}, preview.Columns)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, []string{"1", "alpha"}, preview.Rows[0])
}

func TestBuildPreviewGridRowCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id\n")
	for i := 0; i < maxPreviewRows+50; i++ {
		sb.WriteString("row\n")
	}

	preview, err := BuildPreview("big.csv", []byte(sb.String()))
	require.NoError(t, err)

	assert.Len(t, preview.Rows, maxPreviewRows)
}

func TestBuildPreviewJSON(t *testing.T) {
	data := []byte(`{"scenario": "late-settlement", "enabled": true}`)

	preview, err := BuildPreview("config.json", data)
	require.NoError(t, err)

	assert.Equal(t, PreviewJSON, preview.Type)
	assert.JSONEq(t, string(data), string(preview.JSON))
}

func TestBuildPreviewInvalidJSONFallsBackToText(t *testing.T) {
	data := []byte("{not json at all")

	preview, err := BuildPreview("broken.json", data)
	require.NoError(t, err)

	assert.Equal(t, PreviewText, preview.Type)
	assert.Equal(t, "{not json at all", preview.Text)
}

func TestBuildPreviewImage(t *testing.T) {
	preview, err := BuildPreview("diagram.png", []byte{0x89, 0x50})
	require.NoError(t, err)

	assert.Equal(t, PreviewImage, preview.Type)
	assert.Empty(t, preview.Text)
}

func TestBuildPreviewTextTruncation(t *testing.T) {
	data := []byte(strings.Repeat("a", maxPreviewBytes+100))

	preview, err := BuildPreview("notes.txt", data)
	require.NoError(t, err)

	assert.Equal(t, PreviewText, preview.Type)
	assert.Len(t, preview.Text, maxPreviewBytes)
}
