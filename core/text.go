package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TextContent builds the text used to embed a document.
// Sections are emitted in a fixed order and empty sections are omitted.
func (d *Document) TextContent() string {
	var parts []string

	if text := strings.TrimSpace(d.Text); text != "" {
		parts = append(parts, "Title: "+text)
	}
	if rich := strings.TrimSpace(d.RichText); rich != "" {
		parts = append(parts, "Description: "+rich)
	}
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		parts = append(parts, "Notes: "+notes)
	}

	links := make([]string, 0, len(d.Links))
	for _, link := range d.Links {
		if link != "" {
			links = append(links, link)
		}
	}
	if len(links) > 0 {
		parts = append(parts, "Links: "+strings.Join(links, ", "))
	}

	attrs := make([]string, 0, len(d.Attributes))
	for _, attr := range d.Attributes {
		name := strings.TrimSpace(attr.Name)
		value := strings.TrimSpace(attr.Value)
		if name != "" && value != "" {
			attrs = append(attrs, name+": "+value)
		}
	}
	if len(attrs) > 0 {
		parts = append(parts, "Attributes: "+strings.Join(attrs, ", "))
	}

	return strings.Join(parts, " ")
}

// QueryText builds a synthetic query from the document's text fields,
// used to find documents similar to this one.
func (d *Document) QueryText() string {
	var parts []string
	for _, field := range []string{d.Text, d.Notes, d.RichText} {
		if s := strings.TrimSpace(field); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// DisplayNodeID returns the external id, falling back to the stringified ID.
func (d *Document) DisplayNodeID() string {
	if d.NodeID != "" {
		return d.NodeID
	}
	return d.Id.String()
}

// refKeys lists the object keys recognised as carrying a reference, in lookup order.
var refKeys = []string{"$oid", "id", "_id", "nodeid", "external_id"}

// NormalizeRef converts a structural reference into its canonical string form.
//
// Accepted shapes:
//   - ID, rendered as a StoreRef
//   - signed and unsigned integers, integral float64 and json.Number
//   - strings, including ObjectId("...") wrappers and JSON object text
//   - map[string]any objects keyed by one of "$oid", "id", "_id", "nodeid", "external_id"
//
// Anything else, and blank values, are reported as unresolved.
func NormalizeRef(v any) (string, bool) {
	switch ref := v.(type) {
	case nil:
		return "", false
	case ID:
		return StoreRef(ref), true
	case uint64:
		return strconv.FormatUint(ref, 10), true
	case uint32:
		return strconv.FormatUint(uint64(ref), 10), true
	case int:
		return normalizeSigned(int64(ref))
	case int64:
		return normalizeSigned(ref)
	case int32:
		return normalizeSigned(int64(ref))
	case float64:
		if ref < 0 || ref != float64(uint64(ref)) {
			return "", false
		}
		return strconv.FormatUint(uint64(ref), 10), true
	case json.Number:
		return NormalizeRef(string(ref))
	case string:
		return normalizeRefString(ref)
	case map[string]any:
		for _, key := range refKeys {
			if inner, ok := ref[key]; ok {
				return NormalizeRef(inner)
			}
		}
		return "", false
	default:
		return "", false
	}
}

func normalizeSigned(v int64) (string, bool) {
	if v < 0 {
		return "", false
	}
	return strconv.FormatInt(v, 10), true
}

func normalizeRefString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		var obj map[string]any
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return "", false
		}
		return NormalizeRef(obj)
	}

	if inner, ok := strings.CutPrefix(s, "ObjectId("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return "", false
		}
		return normalizeRefString(strings.Trim(inner, `"'`))
	}

	return s, true
}

// NormalizeRefs applies NormalizeRef to each element and drops unresolved ones.
// A single non-slice value is treated as a one-element list.
func NormalizeRefs(v any) []string {
	var items []any
	switch list := v.(type) {
	case nil:
		return nil
	case []any:
		items = list
	case []string:
		items = make([]any, len(list))
		for i, s := range list {
			items[i] = s
		}
	default:
		items = []any{v}
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		if ref, ok := NormalizeRef(item); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
