package docs

import (
	"fmt"

	"github.com/vorlage-dev/vorlage/pkg/schema"
)

// Info describes the API for the document header.
type Info struct {
	Title       string
	Description string
	Version     string
}

// Document assembles the accumulated operations into an OpenAPI 3 document.
// Paths and methods are emitted in sorted order and json.Marshal sorts map
// keys, so the output is byte-stable across runs.
func (b *Binder) Document(info Info) map[string]any {
	paths := make(map[string]any, len(b.operations))
	for _, path := range b.paths() {
		item := make(map[string]any)
		for _, method := range b.methods(path) {
			item[method] = operationObject(b.operations[path][method])
		}
		paths[path] = item
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       info.Title,
			"description": info.Description,
			"version":     info.Version,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{
					"type":        "http",
					"scheme":      "bearer",
					"description": "API key id presented as a bearer token",
				},
				"cookieAuth": map[string]any{
					"type": "apiKey",
					"in":   "cookie",
					"name": "session",
				},
			},
		},
	}
}

func operationObject(op Operation) map[string]any {
	out := map[string]any{
		"summary": op.Summary,
	}
	if op.Description != "" {
		out["description"] = op.Description
	}
	if op.Tag != "" {
		out["tags"] = []string{op.Tag}
	}

	switch op.Security {
	case Authenticated:
		out["security"] = []map[string][]string{
			{"bearerAuth": {}},
			{"cookieAuth": {}},
		}
	case SessionOnly:
		out["security"] = []map[string][]string{
			{"cookieAuth": {}},
		}
	}

	if op.Input != nil {
		out["requestBody"] = map[string]any{
			"required": true,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": shapeSchema(*op.Input),
				},
			},
		}
	}

	responses := make(map[string]any, len(op.Responses))
	for _, resp := range op.Responses {
		entry := map[string]any{"description": resp.Description}
		if resp.Shape != nil {
			entry["content"] = map[string]any{
				"application/json": map[string]any{
					"schema": definitionSchema(*resp.Shape),
				},
			}
		}
		responses[fmt.Sprintf("%d", resp.Status)] = entry
	}
	if len(responses) > 0 {
		out["responses"] = responses
	}

	return out
}

// shapeSchema renders a derived input shape as a JSON schema object. The
// validation keywords mirror the rules Bind enforces.
func shapeSchema(s schema.Shape) map[string]any {
	properties := make(map[string]any, len(s.Fields))
	var required []string

	for _, f := range s.Fields {
		prop := map[string]any{"type": string(f.Type)}
		if f.Doc != "" {
			prop["description"] = f.Doc
		}
		if f.Rules.MinLen > 0 {
			prop["minLength"] = f.Rules.MinLen
		}
		if f.Rules.MaxLen > 0 {
			prop["maxLength"] = f.Rules.MaxLen
		}
		if f.Rules.Email {
			prop["format"] = "email"
		}
		if f.Rules.Alphanumeric {
			prop["pattern"] = "^[a-zA-Z0-9]+$"
		}
		if f.Secret {
			prop["format"] = "password"
			prop["writeOnly"] = true
		}
		properties[f.Name] = prop

		if f.Required {
			required = append(required, f.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// definitionSchema renders an entity definition as a response schema.
// Secret fields never appear in responses.
func definitionSchema(d schema.Definition) map[string]any {
	properties := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		if f.Secret {
			continue
		}
		prop := map[string]any{"type": string(f.Type)}
		if f.Doc != "" {
			prop["description"] = f.Doc
		}
		properties[f.Name] = prop
	}

	return map[string]any{
		"type":       "object",
		"title":      d.Name,
		"properties": properties,
	}
}
