package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render(Document{
		Title:    "Absence case c-1",
		Subtitle: "Team Alpha",
		Lines:    []string{"Worker: Somchai", "", "Final status: swapped"},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRender_ManyLinesSpansPages(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "line"
	}

	short, err := Render(Document{Title: "Short", Lines: lines[:1]})
	require.NoError(t, err)
	long, err := Render(Document{Title: "Long", Lines: lines})
	require.NoError(t, err)

	pages := []byte("/Type /Page")
	assert.Greater(t, bytes.Count(long, pages), bytes.Count(short, pages))
}
