package docgen

// Static default data seeded into every document before traversal begins.

var defaultResponseDescriptions = map[string]string{
	"200": "OK",
	"201": "Created",
	"204": "No Content",
	"400": "Input data was invalid",
	"401": "No or invalid token provided",
	"403": "No permission for user",
	"404": "One of the resources specified could not be found",
}

// permissionMethodNames maps non-GET verbs to their permission method names.
// GET resolves to list or read depending on the handler flavor.
var permissionMethodNames = map[string]string{
	"post":   "create",
	"put":    "update",
	"patch":  "update",
	"delete": "delete",
}

func newDocument() *Document {
	return &Document{
		OpenAPI: "3.0.0",
		Info: map[string]any{
			"contact": map[string]any{
				"email": "developers@cloudcix.com",
			},
		},
		Tags:     []Tag{},
		Security: []map[string][]string{{"XAuthToken": {}}},
		Paths:    map[string]map[string]Operation{},
		Components: &Components{
			Responses: map[string]any{
				"400": map[string]any{
					"description": "Input data was invalid",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{
								"oneOf": []any{
									map[string]any{"$ref": "#/components/schemas/Error"},
									map[string]any{"$ref": "#/components/schemas/MultiError"},
								},
							},
						},
					},
				},
				"401": map[string]any{
					"description": "No / invalid token provided",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"detail": map[string]any{
										"type":        "string",
										"description": "Verbose error message explaining the error",
									},
								},
							},
						},
					},
				},
				"403": map[string]any{
					"description": "Permission denied for this user",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/Error"},
						},
					},
				},
				"404": map[string]any{
					"description": "One of the specified resources could not be found",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/Error"},
						},
					},
				},
			},
			SecuritySchemes: map[string]any{
				"XAuthToken": map[string]any{
					"type": "apiKey",
					"in":   "header",
					"name": "X-Auth-Token",
				},
			},
			Schemas: map[string]any{
				"ListMetadata": map[string]any{
					"type":     "object",
					"required": []string{"total_records", "page", "limit", "order", "warnings"},
					"properties": map[string]any{
						"total_records": map[string]any{
							"type":        "integer",
							"description": "The total number of records found for the given search",
						},
						"page": map[string]any{
							"type":        "integer",
							"description": "The value of page that was used for the request",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "The value of limit that was used for the request",
						},
						"order": map[string]any{
							"type":        "string",
							"description": "The value of order that was used for the request",
						},
						"warnings": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
							"description": "A list of warnings generated during execution. Any invalid search filters used " +
								"will cause a warning to be generated, for example.",
						},
					},
				},
				"Error": map[string]any{
					"type":     "object",
					"required": []string{"error_code", "detail"},
					"properties": map[string]any{
						"error_code": map[string]any{
							"type":        "string",
							"description": "CloudCIX error code for the error",
						},
						"detail": map[string]any{
							"type":        "string",
							"description": "Verbose version of the error message",
						},
					},
				},
				"MultiError": map[string]any{
					"description": "A map of field names to Error objects representing an error that was found with the data " +
						"supplied for that field",
					"type":     "object",
					"required": []string{"errors"},
					"properties": map[string]any{
						"errors": map[string]any{
							"type": "object",
							"additionalProperties": map[string]any{
								"$ref": "#/components/schemas/Error",
							},
						},
					},
				},
			},
		},
	}
}

// defaultListParameters returns the standard query parameters appended to
// every collection fetch operation. A fresh slice is built per call since
// operations are mutated in place.
func defaultListParameters() []any {
	return []any{
		map[string]any{
			"name": "exclude",
			"in":   "query",
			"description": "Filter the result to objects that do not match the specified filters. " +
				"Possible filters are outlined in the individual list method descriptions.",
			"required": false,
			"schema":   map[string]any{"type": "object"},
			"style":    "deepObject",
			"explode":  true,
		},
		map[string]any{
			"name":        "limit",
			"in":          "query",
			"description": "The limit of the number of objects returned per page",
			"required":    false,
			"schema": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
				"default": 50,
			},
		},
		map[string]any{
			"name": "order",
			"in":   "query",
			"description": "The field to use for ordering. Possible fields and the default are outlined in the " +
				"individual method descriptions.",
			"required": false,
			"schema":   map[string]any{"type": "string"},
		},
		map[string]any{
			"name":        "page",
			"in":          "query",
			"description": "The page of records to return, assuming `limit` number of records per page.",
			"required":    false,
			"schema": map[string]any{
				"type":    "number",
				"minimum": 0,
				"default": 0,
			},
		},
		map[string]any{
			"name": "search",
			"in":   "query",
			"description": "Filter the result to objects that match the specified filters. " +
				"Possible filters are outlined in the individual list method descriptions.",
			"required": false,
			"schema":   map[string]any{"type": "object"},
			"style":    "deepObject",
			"explode":  true,
		},
	}
}
