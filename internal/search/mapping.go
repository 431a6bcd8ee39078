package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for library documents.
//
// Priorities:
//  1. Fast full-text search on names/titles with English stemming
//  2. Denormalized artist/album fields so one query spans the hierarchy
//  3. Exact keyword matching for type filters
//  4. Numeric range queries for year
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Denormalized artist name
	artistFieldMapping := bleve.NewTextFieldMapping()
	artistFieldMapping.Analyzer = en.AnalyzerName
	artistFieldMapping.Store = true
	artistFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("artist", artistFieldMapping)

	// Denormalized album title
	albumFieldMapping := bleve.NewTextFieldMapping()
	albumFieldMapping.Analyzer = en.AnalyzerName
	albumFieldMapping.Store = true
	albumFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("album", albumFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Genre - exact match filter and facet source
	genreFieldMapping := bleve.NewTextFieldMapping()
	genreFieldMapping.Analyzer = keyword.Name
	genreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genre", genreFieldMapping)

	// Missing flag - filterable
	missingFieldMapping := bleve.NewBooleanFieldMapping()
	missingFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("missing", missingFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
