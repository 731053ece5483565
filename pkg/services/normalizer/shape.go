package normalizer

import (
	"fmt"
)

// Shape identifies one of the response layouts the upstream API is known to return.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeNestedEnvelope is {"data": {"data": [...]}}.
	ShapeNestedEnvelope
	// ShapeFlatData is {"data": [...]}.
	ShapeFlatData
	// ShapeValues is {"values": [...]}.
	ShapeValues
	// ShapeBareArray is a top-level [...].
	ShapeBareArray
	// ShapeSingleObject is one item without any envelope.
	ShapeSingleObject
)

func (s Shape) String() string {
	switch s {
	case ShapeNestedEnvelope:
		return "nested_envelope"
	case ShapeFlatData:
		return "flat_data"
	case ShapeValues:
		return "values"
	case ShapeBareArray:
		return "bare_array"
	case ShapeSingleObject:
		return "single_object"
	default:
		return "unknown"
	}
}

// Payload is a detected response: its shape and the items it carries.
type Payload struct {
	Shape Shape
	Items []map[string]any
}

// FormatError is returned by Detect when the response matches no known shape.
type FormatError struct {
	Got string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized response shape: %s", e.Got)
}

type shapePredicate struct {
	shape Shape
	match func(raw any) ([]any, bool)
}

// Order matters: the nested envelope also has a "data" key.
var shapePredicates = []shapePredicate{
	{ShapeNestedEnvelope, func(raw any) ([]any, bool) {
		outer, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		inner, ok := outer["data"].(map[string]any)
		if !ok {
			return nil, false
		}
		items, ok := inner["data"].([]any)
		return items, ok
	}},
	{ShapeFlatData, func(raw any) ([]any, bool) {
		return arrayField(raw, "data")
	}},
	{ShapeValues, func(raw any) ([]any, bool) {
		return arrayField(raw, "values")
	}},
	{ShapeBareArray, func(raw any) ([]any, bool) {
		items, ok := raw.([]any)
		return items, ok
	}},
	{ShapeSingleObject, func(raw any) ([]any, bool) {
		obj, ok := raw.(map[string]any)
		if !ok || len(obj) == 0 {
			return nil, false
		}
		if _, hasData := obj["data"]; hasData {
			return nil, false
		}
		if _, hasValues := obj["values"]; hasValues {
			return nil, false
		}
		return []any{obj}, true
	}},
}

// Detect classifies a decoded JSON response. Non-object array elements are skipped.
func Detect(raw any) (Payload, error) {
	for _, p := range shapePredicates {
		items, ok := p.match(raw)
		if !ok {
			continue
		}
		return Payload{Shape: p.shape, Items: objects(items)}, nil
	}
	return Payload{Shape: ShapeUnknown}, &FormatError{Got: describe(raw)}
}

func arrayField(raw any, key string) ([]any, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := obj[key].([]any)
	return items, ok
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func describe(raw any) string {
	switch typed := raw.(type) {
	case nil:
		return "null"
	case map[string]any:
		if len(typed) == 0 {
			return "empty object"
		}
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}
		return fmt.Sprintf("object with keys %v", keys)
	default:
		return fmt.Sprintf("%T", raw)
	}
}
