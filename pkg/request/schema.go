package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the JSON Schema of the tagged request form.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "omnisend request",
  "type": "object",
  "required": ["protocol"],
  "properties": {
    "protocol": { "enum": ["HTTP", "MQTT", "MQTT_SN", "COAP"] }
  },
  "allOf": [
    {
      "if": { "required": ["protocol"], "properties": { "protocol": { "const": "HTTP" } } },
      "then": { "$ref": "#/$defs/http" }
    },
    {
      "if": { "required": ["protocol"], "properties": { "protocol": { "const": "MQTT" } } },
      "then": { "$ref": "#/$defs/mqtt" }
    },
    {
      "if": { "required": ["protocol"], "properties": { "protocol": { "const": "MQTT_SN" } } },
      "then": { "$ref": "#/$defs/mqttSn" }
    },
    {
      "if": { "required": ["protocol"], "properties": { "protocol": { "const": "COAP" } } },
      "then": { "$ref": "#/$defs/coap" }
    }
  ],
  "$defs": {
    "port": { "type": "integer", "minimum": 0, "maximum": 65535 },
    "http": {
      "required": ["method", "url"],
      "properties": {
        "method": { "type": "string" },
        "url": { "type": "string" },
        "headers": {
          "type": ["object", "null"],
          "additionalProperties": { "type": "string" }
        },
        "body": { "type": ["string", "null"] }
      }
    },
    "mqtt": {
      "required": ["broker", "port", "topic", "qos", "message"],
      "properties": {
        "broker": { "type": "string" },
        "port": { "$ref": "#/$defs/port" },
        "topic": { "type": "string" },
        "qos": { "type": "integer", "minimum": 0, "maximum": 255 },
        "message": { "type": "string" }
      }
    },
    "mqttSn": {
      "required": ["gateway", "port", "data"],
      "properties": {
        "gateway": { "type": "string" },
        "port": { "$ref": "#/$defs/port" },
        "data": { "type": "string" }
      }
    },
    "coap": {
      "required": ["method", "host", "path"],
      "properties": {
        "method": { "type": "string" },
        "host": { "type": "string" },
        "path": { "type": "string" },
        "payload": { "type": ["string", "null"] }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON Schema document describing the request form.
func Schema() json.RawMessage {
	return json.RawMessage(schemaJSON)
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("request.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("request.json")
	})
	return compiledSchema, schemaErr
}

// ValidateJSON checks raw request JSON against the request schema. Failures
// are returned as validation errors listing every violated field.
func ValidateJSON(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return &protocol.Error{Kind: protocol.KindInternal, Op: "schema", Message: "request schema unavailable", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return protocol.Validation("", "decode", "invalid request JSON: %v", err)
	}
	if dec.More() {
		return protocol.Validation("", "decode", "invalid request JSON: trailing data after object")
	}

	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return protocol.Validation(tagOf(doc), "validate", "invalid request: %s", strings.Join(schemaMessages(ve), "; "))
		}
		return protocol.Validation(tagOf(doc), "validate", "invalid request: %v", err)
	}
	return nil
}

// schemaMessages flattens the leaf causes of a validation error into
// "location: message" strings.
func schemaMessages(err *jsonschema.ValidationError) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msg := loc + ": " + e.Message
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)
	sort.Strings(out)
	return out
}

func tagOf(doc any) protocol.Protocol {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	tag, _ := obj["protocol"].(string)
	p := protocol.Protocol(tag)
	if !p.Valid() {
		return ""
	}
	return p
}
