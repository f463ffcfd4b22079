package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/matzehuels/witview/pkg/errors"
)

// =============================================================================
// Field Aliases
// =============================================================================

// Aliases accepted on decode, canonical name first.
var (
	typeKeys        = []string{"type", "element_type", "elementType"}
	sourceKeys      = []string{"sourceId", "source_id", "source"}
	targetKeys      = []string{"targetId", "target_id", "target"}
	diagramTypeKeys = []string{"diagramType", "diagram_type"}
)

// knownElementKeys are consumed by the decoder. Any other top-level key is a
// flattened property and is folded into Properties.
var knownElementKeys = map[string]bool{
	"id": true, "label": true, "bounds": true, "position": true, "size": true,
	"properties": true, "children": true, "layout_options": true, "routingPoints": true,
	"type": true, "element_type": true, "elementType": true,
	"sourceId": true, "source_id": true, "source": true,
	"targetId": true, "target_id": true, "target": true,
}

// =============================================================================
// Model JSON
// =============================================================================

type modelJSON struct {
	ID          string             `json:"id"`
	DiagramType Type               `json:"diagramType"`
	Revision    int                `json:"revision,omitempty"`
	Elements    map[string]Element `json:"elements"`
}

// MarshalJSON writes the canonical form.
func (m *Model) MarshalJSON() ([]byte, error) {
	elems := m.Elements
	if elems == nil {
		elems = map[string]Element{}
	}
	return json.Marshal(modelJSON{ID: m.ID, DiagramType: m.Type, Revision: m.Revision, Elements: elems})
}

// UnmarshalJSON decodes the canonical form or any historical alias of it.
func (m *Model) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}

	var out Model
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &out.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram id")
		}
	}
	if v, ok := raw["revision"]; ok {
		if err := json.Unmarshal(v, &out.Revision); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode revision")
		}
	}

	var typeName string
	for _, k := range diagramTypeKeys {
		if v, ok := raw[k]; ok {
			if err := json.Unmarshal(v, &typeName); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", k)
			}
			break
		}
	}
	t, err := ParseType(typeName)
	if err != nil {
		return err
	}
	out.Type = t
	out.Elements = make(map[string]Element)

	rawElems, err := decodeElementList(raw["elements"])
	if err != nil {
		return err
	}
	for _, re := range rawElems {
		e, err := decodeElement(re.key, re.fields)
		if err != nil {
			return err
		}
		if e == nil {
			continue
		}
		if err := out.Add(e); err != nil {
			return err
		}
	}

	*m = out
	return nil
}

type keyedFields struct {
	key    string
	fields map[string]any
}

// decodeElementList accepts either an object keyed by id or an array.
func decodeElementList(data json.RawMessage) ([]keyedFields, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	if data[0] == '[' {
		var arr []map[string]any
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode elements")
		}
		out := make([]keyedFields, len(arr))
		for i, f := range arr {
			out[i] = keyedFields{fields: f}
		}
		return out, nil
	}

	var obj map[string]map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode elements")
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]keyedFields, len(keys))
	for i, k := range keys {
		out[i] = keyedFields{key: k, fields: obj[k]}
	}
	return out, nil
}

// decodeElement migrates one raw element. Returns nil for elements that have no
// place in the canonical model (the legacy container root).
func decodeElement(key string, f map[string]any) (Element, error) {
	id := stringField(f, "id")
	if id == "" {
		id = key
	}
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "element without id")
	}

	typ := firstString(f, typeKeys)
	if typ == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "element %s has no type", id)
	}

	src, tgt := firstString(f, sourceKeys), firstString(f, targetKeys)
	if src != "" || tgt != "" {
		if src == "" || tgt == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %s needs both source and target", id)
		}
		return &Edge{ID: id, Type: typ, SourceID: src, TargetID: tgt, Label: stringField(f, "label")}, nil
	}

	if typ == NodeGraphRoot {
		if _, hasChildren := f["children"]; hasChildren {
			return nil, nil
		}
	}

	n := &Node{ID: id, Type: typ, Label: stringField(f, "label"), Bounds: decodeBounds(f)}
	props, _ := f["properties"].(map[string]any)
	for k, v := range f {
		if knownElementKeys[k] {
			continue
		}
		if props == nil {
			props = make(map[string]any)
		}
		if _, exists := props[k]; !exists {
			props[k] = v
		}
	}
	n.Properties = props
	return n, nil
}

func decodeBounds(f map[string]any) Bounds {
	if b, ok := f["bounds"].(map[string]any); ok {
		return Bounds{X: num(b["x"]), Y: num(b["y"]), Width: num(b["width"]), Height: num(b["height"])}
	}
	var out Bounds
	if p, ok := f["position"].(map[string]any); ok {
		out.X, out.Y = num(p["x"]), num(p["y"])
	}
	if s, ok := f["size"].(map[string]any); ok {
		out.Width, out.Height = num(s["width"]), num(s["height"])
	}
	return out
}

func firstString(f map[string]any, keys []string) string {
	for _, k := range keys {
		if s := stringField(f, k); s != "" {
			return s
		}
	}
	return ""
}

func stringField(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func num(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

// =============================================================================
// Element Slices
// =============================================================================

// MarshalElements encodes an element slice, preserving order.
func MarshalElements(elems []Element) ([]byte, error) {
	if elems == nil {
		elems = []Element{}
	}
	return json.Marshal(elems)
}

// UnmarshalElements decodes an element slice, preserving order.
func UnmarshalElements(data []byte) ([]Element, error) {
	var arr []map[string]any
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode elements")
	}
	out := make([]Element, 0, len(arr))
	for _, f := range arr {
		e, err := decodeElement("", f)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal encodes a model as indented canonical JSON.
func Marshal(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a model from JSON, migrating aliases.
func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return &m, nil
}

// Write encodes a model as indented canonical JSON to w.
func Write(m *Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Read decodes a model from r.
func Read(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// ReadFile reads and decodes a diagram file.
func ReadFile(path string) (*Model, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "diagram file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes a model to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(m *Model, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(m, f)
}
