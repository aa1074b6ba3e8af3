package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Preview types returned by the file preview endpoint
const (
	PreviewGrid  = "grid"
	PreviewJSON  = "json"
	PreviewText  = "text"
	PreviewImage = "image"
)

// maxPreviewRows caps grid previews so huge delivered files stay cheap to render
const maxPreviewRows = 200

// maxPreviewBytes caps text previews
const maxPreviewBytes = 64 * 1024

// Preview is a structured, frontend-renderable view of a stored file
type Preview struct {
	Type    string          `json:"type"`
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]string      `json:"rows,omitempty"`
	JSON    json.RawMessage `json:"json,omitempty"`
	Text    string          `json:"text,omitempty"`
}

// DetectPreviewType maps a file name onto a preview type
func DetectPreviewType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return PreviewGrid
	case ".json":
		return PreviewJSON
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		return PreviewImage
	default:
		return PreviewText
	}
}

// BuildPreview renders a structured preview of the file content. Image files
// are not previewed inline; callers serve their raw bytes instead.
func BuildPreview(name string, data []byte) (*Preview, error) {
	switch DetectPreviewType(name) {
	case PreviewGrid:
		return buildGridPreview(name, data)
	case PreviewJSON:
		if !json.Valid(data) {
			// Delivered file claims .json but is not parseable; fall back
			return buildTextPreview(data), nil
		}
		return &Preview{Type: PreviewJSON, JSON: json.RawMessage(data)}, nil
	case PreviewImage:
		return &Preview{Type: PreviewImage}, nil
	default:
		return buildTextPreview(data), nil
	}
}

func buildGridPreview(name string, data []byte) (*Preview, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse grid file: %w", err)
	}
	if len(records) == 0 {
		return &Preview{Type: PreviewGrid}, nil
	}

	preview := &Preview{
		Type:    PreviewGrid,
		Columns: records[0],
	}
	rows := records[1:]
	if len(rows) > maxPreviewRows {
		rows = rows[:maxPreviewRows]
	}
	preview.Rows = rows

	return preview, nil
}

func buildTextPreview(data []byte) *Preview {
	if len(data) > maxPreviewBytes {
		data = data[:maxPreviewBytes]
	}
	// Trim a trailing partial rune left by the byte cut
	for len(data) > 0 && !utf8.Valid(data) {
		data = data[:len(data)-1]
	}
	return &Preview{Type: PreviewText, Text: string(data)}
}
