package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlist/starlist/internal/app"
)

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		want        []app.Entry
		wantSkipped int
	}{
		{
			name: "single entry with description",
			doc:  "## scRNA-seq Tools\n- [Scanpy](https://github.com/scverse/scanpy): Python toolkit.\n",
			want: []app.Entry{
				{
					Name:        "Scanpy",
					Owner:       "scverse",
					Repo:        "scanpy",
					Category:    "scRNA-seq Tools",
					Description: "Python toolkit.",
					URL:         "https://github.com/scverse/scanpy",
				},
			},
		},
		{
			name: "prose list item yields nothing",
			doc:  "## Tools\n- Just a comment about tools\n",
			want: nil,
		},
		{
			name: "non-github link yields nothing",
			doc:  "## Tools\n- [docs](https://example.com/a/b) - hosted elsewhere\n",
			want: nil,
		},
		{
			name: "extra path segments normalized",
			doc:  "## Tools\n- [Seurat](https://github.com/satijalab/seurat/tree/master/vignettes) - R toolkit\n",
			want: []app.Entry{
				{
					Name:        "Seurat",
					Owner:       "satijalab",
					Repo:        "seurat",
					Category:    "Tools",
					Description: "R toolkit",
					URL:         "https://github.com/satijalab/seurat",
				},
			},
		},
		{
			name:        "malformed link skipped",
			doc:         "## Tools\n- [broken](https://github.com/onlyowner) - missing repo segment\n",
			want:        nil,
			wantSkipped: 1,
		},
		{
			name:        "entry before any category skipped",
			doc:         "- [early](https://github.com/a/b) - no heading yet\n",
			want:        nil,
			wantSkipped: 1,
		},
		{
			name:        "excluded heading never becomes a category",
			doc:         "## Tools\n- [x](https://github.com/a/b)\n\n## Contributing\n- [y](https://github.com/c/d)\n",
			wantSkipped: 1,
			want: []app.Entry{
				{
					Name:     "x",
					Owner:    "a",
					Repo:     "b",
					Category: "Tools",
					URL:      "https://github.com/a/b",
				},
			},
		},
		{
			name: "duplicate repo under two categories yields two entries",
			doc: strings.Join([]string{
				"### Visualization",
				"- [cellxgene](https://github.com/chanzuckerberg/cellxgene) - explorer",
				"### Portals",
				"- [cellxgene](https://github.com/chanzuckerberg/cellxgene) - portal",
			}, "\n"),
			want: []app.Entry{
				{
					Name:        "cellxgene",
					Owner:       "chanzuckerberg",
					Repo:        "cellxgene",
					Category:    "Visualization",
					Description: "explorer",
					URL:         "https://github.com/chanzuckerberg/cellxgene",
				},
				{
					Name:        "cellxgene",
					Owner:       "chanzuckerberg",
					Repo:        "cellxgene",
					Category:    "Portals",
					Description: "portal",
					URL:         "https://github.com/chanzuckerberg/cellxgene",
				},
			},
		},
		{
			name: "empty link text falls back to owner/repo",
			doc:  "## Tools\n- [](https://github.com/a/b)\n",
			want: []app.Entry{
				{
					Name:     "a/b",
					Owner:    "a",
					Repo:     "b",
					Category: "Tools",
					URL:      "https://github.com/a/b",
				},
			},
		},
		{
			name: "case preserved in owner and repo",
			doc:  "## Tools\n- [MACS](https://github.com/macs3-Project/MACS) - peak calling\n",
			want: []app.Entry{
				{
					Name:        "MACS",
					Owner:       "macs3-Project",
					Repo:        "MACS",
					Category:    "Tools",
					Description: "peak calling",
					URL:         "https://github.com/macs3-Project/MACS",
				},
			},
		},
		{
			name: "language tag stripped from description",
			doc:  "## Tools\n- [Seurat](https://github.com/satijalab/seurat) - [R] - QC and exploration\n",
			want: []app.Entry{
				{
					Name:        "Seurat",
					Owner:       "satijalab",
					Repo:        "seurat",
					Category:    "Tools",
					Description: "QC and exploration",
					URL:         "https://github.com/satijalab/seurat",
				},
			},
		},
		{
			name: "emoji stripped from description",
			doc:  "## Tools\n- [fastp](https://github.com/OpenGene/fastp) - ultra fast preprocessing \U0001F680\n",
			want: []app.Entry{
				{
					Name:        "fastp",
					Owner:       "OpenGene",
					Repo:        "fastp",
					Category:    "Tools",
					Description: "ultra fast preprocessing",
					URL:         "https://github.com/OpenGene/fastp",
				},
			},
		},
		{
			name: "bold link still recognized",
			doc:  "## Tools\n- **[STAR](https://github.com/alexdobin/STAR)** - aligner\n",
			want: []app.Entry{
				{
					Name:        "STAR",
					Owner:       "alexdobin",
					Repo:        "STAR",
					Category:    "Tools",
					Description: "aligner",
					URL:         "https://github.com/alexdobin/STAR",
				},
			},
		},
		{
			name: "www host and url fragment accepted",
			doc:  "## Tools\n- [tool](https://www.github.com/a/b#readme) - docs link\n",
			want: []app.Entry{
				{
					Name:        "tool",
					Owner:       "a",
					Repo:        "b",
					Category:    "Tools",
					Description: "docs link",
					URL:         "https://github.com/a/b",
				},
			},
		},
		{
			name: "level 1 heading is not a category",
			doc:  "# Awesome List\n- [x](https://github.com/a/b)\n## Tools\n- [y](https://github.com/c/d)\n",
			want: []app.Entry{
				{
					Name:     "y",
					Owner:    "c",
					Repo:     "d",
					Category: "Tools",
					URL:      "https://github.com/c/d",
				},
			},
			wantSkipped: 1,
		},
		{
			name: "empty document",
			doc:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := New()
			got, skipped, err := e.Extract(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestExtractorIsDeterministic(t *testing.T) {
	t.Parallel()

	doc := strings.Join([]string{
		"# awesome-single-cell",
		"",
		"## Table of Contents",
		"- [Software packages](#software-packages)",
		"",
		"## Software packages",
		"",
		"### RNA-seq",
		"- [Scanpy](https://github.com/scverse/scanpy) - [Python] - scalable toolkit.",
		"- [Seurat](https://github.com/satijalab/seurat) - [R] - QC, analysis, and exploration.",
		"- A plain comment line.",
		"",
		"### Variant calling",
		"- [SCcaller](https://github.com/biosinodx/SCcaller) - [Python] - variants in single cells.",
		"- [broken](https://github.com/nowhere)",
		"- [monovar](https://bitbucket.org/hamimzafar/monovar) - single-cell SNV detection.",
		"",
		"## Contributing",
		"- [guide](https://github.com/a/b) - should not appear",
	}, "\n")

	e := New()
	first, firstSkipped, err := e.Extract(doc)
	require.NoError(t, err)
	second, secondSkipped, err := e.Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSkipped, secondSkipped)

	require.Len(t, first, 3)
	assert.Equal(t, "RNA-seq", first[0].Category)
	assert.Equal(t, "RNA-seq", first[1].Category)
	assert.Equal(t, "Variant calling", first[2].Category)
	for _, entry := range first {
		assert.NotEqual(t, "Contributing", entry.Category)
		assert.NotEqual(t, "Table of Contents", entry.Category)
		assert.Nil(t, entry.Stars)
	}
	// broken github link in Variant calling plus the entry under Contributing.
	assert.Equal(t, 2, firstSkipped)
}

func TestWithExcludedHeadings(t *testing.T) {
	t.Parallel()

	doc := "## Archive\n- [x](https://github.com/a/b)\n"

	got, skipped, err := New().Extract(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Archive", got[0].Category)
	assert.Equal(t, 0, skipped)

	got, skipped, err = New(WithExcludedHeadings([]string{"Archive"})).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, skipped)
}
