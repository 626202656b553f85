package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdex/pkg/types"
)

const sampleMarkdown = `# Guide

Intro text.

## Install

` + "```" + `
# not a heading, inside a fence
` + "```" + `

## Usage

### Usage

####### seven hashes is not a heading
#missing-space is not a heading
`

func TestMarkdownExtract(t *testing.T) {
	m := &Markdown{}
	records, err := m.ExtractDirect("docs/guide.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "Guide", records[0].Name)
	assert.Equal(t, types.KindHeading, records[0].Kind)
	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, "docs/guide.md#Guide:heading", records[0].ID)

	assert.Equal(t, "Install", records[1].Name)
	assert.Equal(t, "Usage", records[2].Name)

	// Duplicate heading text gets an occurrence suffix to keep IDs unique.
	assert.Equal(t, "Usage (2)", records[3].Name)
	assert.NotEqual(t, records[2].ID, records[3].ID)
}

func TestMarkdownEmpty(t *testing.T) {
	m := &Markdown{}
	records, err := m.ExtractDirect("empty.md", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMarkdownContract(t *testing.T) {
	m := &Markdown{}
	require.NoError(t, Validate(m))
	assert.Equal(t, []string{".md", ".markdown"}, m.Extensions())
	require.NoError(t, m.Init(InitContext{}))
	require.NoError(t, m.Dispose())
}
