package docgen

// Operation is one verb entry of a path item. Metadata blocks merge into it
// verbatim, so it stays an open mapping rather than a closed struct.
type Operation = map[string]any

// Tag is one named grouping of operations, contributed by a view file.
type Tag struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Components is the reusable fragment area of the document. An entity name
// is registered in Schemas at most once; re-registration is skipped.
type Components struct {
	Responses       map[string]any `json:"responses"`
	Schemas         map[string]any `json:"schemas"`
	SecuritySchemes map[string]any `json:"securitySchemes"`
}

// Document is the single output tree assembled by a generation run.
//
// Struct fields are declared in lexicographic key order and nested mappings
// are plain maps, so encoding/json serializes every level with stable,
// sorted keys.
type Document struct {
	Components   *Components                     `json:"components"`
	ExternalDocs map[string]any                  `json:"externalDocs,omitempty"`
	Info         map[string]any                  `json:"info"`
	OpenAPI      string                          `json:"openapi"`
	Paths        map[string]map[string]Operation `json:"paths"`
	Security     []map[string][]string           `json:"security"`
	Servers      []map[string]any                `json:"servers,omitempty"`
	Tags         []Tag                           `json:"tags"`
}
