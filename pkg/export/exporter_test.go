package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcriptDataset() Dataset {
	return Dataset{
		Headers: []string{"Subject", "Mark"},
		Rows: []map[string]string{
			{"Subject": "Advanced Database Systems", "Mark": "85"},
			{"Subject": "Python", "Mark": "90"},
			{"Subject": "Statistics"},
		},
	}
}

func TestCSVRenderLooksUpValuesByHeader(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(transcriptDataset())

	require.NoError(t, err)
	assert.Equal(t, "Subject,Mark\nAdvanced Database Systems,85\nPython,90\nStatistics,\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})

	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(transcriptDataset(), "Transcript 2021A042")

	require.NoError(t, err)
	assert.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestColumnWidthsFollowContent(t *testing.T) {
	widths := columnWidths(transcriptDataset())

	require.Len(t, widths, 2)
	assert.Greater(t, widths[0], widths[1], "subject column should outweigh the mark column")

	total := widths[0] + widths[1]
	assert.InDelta(t, pageSpan, total, 0.01)
}

func TestColumnWidthsKeepNarrowColumnsReadable(t *testing.T) {
	data := Dataset{
		Headers: []string{"N", "Remark"},
		Rows: []map[string]string{
			{"N": "1", "Remark": "a very long free-text remark that dominates the page width entirely"},
		},
	}

	widths := columnWidths(data)

	// Unfloored, the one-character column would collapse to ~2mm.
	assert.Greater(t, widths[0], pageSpan/10)
}
