package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/jsonc"
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// field is one top-level member of package.json in source order.
type field struct {
	key   string
	value json.RawMessage
}

// document is a package.json that remembers the order of its members.
type document struct {
	fields []field
}

// parseDocument reads a package.json, tolerating comments and trailing commas.
func parseDocument(data []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, zerr.New("package.json must contain a JSON object")
	}

	doc := &document{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		doc.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, zerr.New("unexpected content after package.json object")
	}
	return doc, nil
}

func (d *document) get(key string) (json.RawMessage, bool) {
	for _, f := range d.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// set replaces the value of key in place, or appends the member.
func (d *document) set(key string, value json.RawMessage) {
	for i := range d.fields {
		if d.fields[i].key == key {
			d.fields[i].value = value
			return
		}
	}
	d.fields = append(d.fields, field{key: key, value: value})
}

// dependencies decodes a dependency section keeping declared order.
// A missing or null section yields ok == false.
func (d *document) dependencies(key string) (domain.DependencyList, bool, error) {
	raw, ok := d.get(key)
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false, zerr.With(zerr.New("dependency section must be an object"), "section", key)
	}

	var list domain.DependencyList
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, false, err
		}
		name, _ := nameTok.(string)

		var rng string
		if err := dec.Decode(&rng); err != nil {
			return nil, false, zerr.With(zerr.With(zerr.Wrap(err, "dependency range must be a string"), "section", key), "dependency", name)
		}
		list.Set(name, rng)
	}
	return list, true, nil
}

// setDependencies encodes list as the section key.
func (d *document) setDependencies(key string, list domain.DependencyList) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dep := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, dep.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, dep.Range); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	d.set(key, buf.Bytes())
	return nil
}

// encode renders the document with two-space indentation and a trailing newline.
func (d *document) encode() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := writeString(&compact, f.key); err != nil {
			return nil, err
		}
		compact.WriteByte(':')
		if err := json.Compact(&compact, f.value); err != nil {
			return nil, err
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder.Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
