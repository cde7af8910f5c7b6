package wizard

import (
	"context"
	"strings"
	"testing"

	"aulaplan/internal/export"
	"aulaplan/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_UsesDocumentTitle(t *testing.T) {
	svc, doc := setupDocument(t, &fakeGenerator{markdown: generated})
	ctx := context.Background()

	dl, err := svc.Export(ctx, doc.ID, export.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "Situaciones_de_Aprendizaje.md", dl.FileName)
	assert.Equal(t, generated, string(dl.Body))

	dl, err = svc.Export(ctx, doc.ID, export.FormatODT)
	require.NoError(t, err)
	assert.Equal(t, "Situaciones_de_Aprendizaje.odt", dl.FileName)
	assert.Equal(t, "application/vnd.oasis.opendocument.text", dl.ContentType)
	assert.Contains(t, string(dl.Body), "xmlns:o=")

	_, err = svc.Export(ctx, "missing", export.FormatHTML)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiff_DefaultsToLatestPair(t *testing.T) {
	svc, doc := setupDocument(t, &fakeGenerator{markdown: generated})
	ctx := context.Background()

	edited := strings.Replace(generated, "Intro", "Intro\nMás intro", 1)
	_, err := svc.SaveMarkdown(ctx, doc.ID, edited)
	require.NoError(t, err)

	d, err := svc.Diff(ctx, doc.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, d.From)
	assert.Equal(t, 2, d.To)
	assert.Equal(t, export.DiffStats{Added: 1}, d.Stats)

	same, err := svc.Diff(ctx, doc.ID, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, same.Stats.Added+same.Stats.Removed)

	_, err = svc.Diff(ctx, doc.ID, 1, 9)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
