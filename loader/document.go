package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ParseDocument decodes and validates a YAML authoring document.
func ParseDocument(data []byte) (*world.World, error) {
	w, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	if err := validate(w); err != nil {
		return nil, err
	}
	return w, nil
}

// MarshalDocument encodes a world as a YAML authoring document.
func MarshalDocument(w *world.World) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("encoding world document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding world document: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeDocument checks the document shape against the schema, then
// decodes it. Node and item ids default to their mapping keys.
func decodeDocument(data []byte) (*world.World, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing world document: %w", err)
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	w := world.New()
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("decoding world document: %w", err)
	}
	if w.Nodes == nil {
		w.Nodes = map[string]*world.Node{}
	}
	if w.Items == nil {
		w.Items = map[string]world.Item{}
	}
	for id, n := range w.Nodes {
		if n != nil && n.ID == "" {
			n.ID = id
		}
	}
	for id, it := range w.Items {
		if it.ID == "" {
			it.ID = id
			w.Items[id] = it
		}
	}
	return w, nil
}

var documentSchema = jsonschema.MustCompileString("world.schema.json", worldSchema)

// checkSchema validates the generic YAML tree. The tree goes through JSON
// so numbers and maps take the shapes the validator expects.
func checkSchema(raw any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("parsing world document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parsing world document: %w", err)
	}
	if err := documentSchema.Validate(doc); err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}
	return nil
}

const worldSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["nodes"],
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string"},
    "start": {"type": "string"},
    "nodes": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/node"}
    },
    "items": {
      "type": ["object", "null"],
      "additionalProperties": {"$ref": "#/definitions/item"}
    },
    "combinations": {
      "type": ["array", "null"],
      "items": {"$ref": "#/definitions/combination"}
    }
  },
  "definitions": {
    "node": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "description": {"type": "string"},
        "attributes": {
          "type": ["object", "null"],
          "additionalProperties": {"type": "string"}
        },
        "edges": {
          "type": ["array", "null"],
          "items": {"$ref": "#/definitions/edge"}
        },
        "items": {
          "type": ["array", "null"],
          "items": {"type": "string"}
        }
      }
    },
    "edge": {
      "type": "object",
      "required": ["target"],
      "additionalProperties": false,
      "properties": {
        "target": {"type": "string", "minLength": 1},
        "label": {"type": "string"},
        "conditions": {
          "type": ["array", "null"],
          "items": {"$ref": "#/definitions/condition"}
        }
      }
    },
    "condition": {
      "oneOf": [
        {
          "type": "object",
          "required": ["has_item"],
          "additionalProperties": false,
          "properties": {"has_item": {"type": "string"}}
        },
        {
          "type": "object",
          "required": ["has_attribute"],
          "additionalProperties": false,
          "properties": {
            "has_attribute": {
              "type": "object",
              "required": ["key", "value"],
              "additionalProperties": false,
              "properties": {
                "key": {"type": "string"},
                "value": {"type": "string"}
              }
            }
          }
        },
        {
          "type": "object",
          "required": ["min_hp"],
          "additionalProperties": false,
          "properties": {"min_hp": {"type": "integer"}}
        }
      ]
    },
    "item": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "description": {"type": "string"},
        "can_pickup": {"type": "boolean"}
      }
    },
    "combination": {
      "type": "object",
      "required": ["item1", "item2", "result"],
      "additionalProperties": false,
      "properties": {
        "item1": {"type": "string"},
        "item2": {"type": "string"},
        "result": {"type": "string"}
      }
    }
  }
}`
