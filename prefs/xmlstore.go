package prefs

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// XMLStore is a Store persisted in Android SharedPreferences XML format:
//
//	<map>
//	    <boolean name="show_hints" value="true" />
//	    <int name="key_longpress_timeout" value="300" />
//	    <long name="last_update" value="1700000000000" />
//	    <float name="keyboard_height_scale" value="1.0" />
//	    <string name="custom_currency_key">€ £</string>
//	    <set name="pinned_keys">
//	        <string>clipboard</string>
//	    </set>
//	</map>
//
// The file is read once on open. Commit rewrites it through a temporary
// file and a rename, so readers never see a partially written map.
type XMLStore struct {
	path string

	mu     sync.Mutex
	values map[string]Value
}

// OpenXML loads the preference file at path. A missing file is an empty store.
func OpenXML(path string) (*XMLStore, error) {
	s := &XMLStore{path: path, values: make(map[string]Value)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	values, err := ParseXML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.values = values
	return s, nil
}

// Path returns the backing file.
func (s *XMLStore) Path() string { return s.path }

func (s *XMLStore) All() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.values)
}

func (s *XMLStore) Get(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *XMLStore) Edit() *Editor {
	return &Editor{commit: s.commit}
}

func (s *XMLStore) commit(clearAll bool, ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyValues(s.values)
	apply(next, clearAll, ops)

	if err := writeFileAtomic(s.path, MarshalXML(next)); err != nil {
		return err
	}
	s.values = next
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseXML decodes SharedPreferences XML. Unknown elements (including
// <null>) are skipped.
func ParseXML(data []byte) (map[string]Value, error) {
	values := make(map[string]Value)
	dec := xml.NewDecoder(bytes.NewReader(data))
	inMap := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "map" {
				inMap = true
				continue
			}
			if !inMap {
				continue
			}
			name := attr(t, "name")
			if name == "" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}

			var v Value
			switch t.Name.Local {
			case "boolean":
				b, err := strconv.ParseBool(attr(t, "value"))
				if err != nil {
					return nil, fmt.Errorf("<boolean name=%q>: %w", name, err)
				}
				v = Bool(b)
			case "int":
				n, err := strconv.ParseInt(attr(t, "value"), 10, 32)
				if err != nil {
					return nil, fmt.Errorf("<int name=%q>: %w", name, err)
				}
				v = Int(int32(n))
			case "long":
				n, err := strconv.ParseInt(attr(t, "value"), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("<long name=%q>: %w", name, err)
				}
				v = Long(n)
			case "float":
				f, err := strconv.ParseFloat(attr(t, "value"), 32)
				if err != nil {
					return nil, fmt.Errorf("<float name=%q>: %w", name, err)
				}
				v = Float(float32(f))
			case "string":
				text, err := readText(dec)
				if err != nil {
					return nil, fmt.Errorf("<string name=%q>: %w", name, err)
				}
				values[name] = String(text)
				continue
			case "set":
				items, err := readSet(dec)
				if err != nil {
					return nil, fmt.Errorf("<set name=%q>: %w", name, err)
				}
				values[name] = StringSet(items...)
				continue
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			values[name] = v
			// value elements are self-closing; consume the end tag
			if err := dec.Skip(); err != nil {
				return nil, err
			}

		case xml.EndElement:
			if t.Name.Local == "map" {
				inMap = false
			}
		}
	}

	return values, nil
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// readText reads character data up to the end of the current element.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 1 {
				b.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

// readSet reads <string> children of a <set> element.
func readSet(dec *xml.Decoder) ([]string, error) {
	var items []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "string" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			text, err := readText(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, text)
		case xml.EndElement:
			return items, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// MarshalXML encodes values as SharedPreferences XML with keys sorted.
func MarshalXML(values map[string]Value) []byte {
	var b bytes.Buffer
	b.WriteString("<?xml version='1.0' encoding='utf-8' standalone='yes' ?>\n<map>\n")

	for _, key := range Keys(values) {
		v := values[key]
		name := escape(key)
		switch v.Kind() {
		case KindBool, KindInt, KindLong, KindFloat:
			fmt.Fprintf(&b, "    <%s name=\"%s\" value=\"%s\" />\n", v.Kind(), name, v.Format())
		case KindString:
			s, _ := v.AsString()
			fmt.Fprintf(&b, "    <string name=\"%s\">%s</string>\n", name, escape(s))
		case KindStringSet:
			set, _ := v.AsStringSet()
			if len(set) == 0 {
				fmt.Fprintf(&b, "    <set name=\"%s\" />\n", name)
				continue
			}
			fmt.Fprintf(&b, "    <set name=\"%s\">\n", name)
			for _, item := range set {
				fmt.Fprintf(&b, "        <string>%s</string>\n", escape(item))
			}
			b.WriteString("    </set>\n")
		}
	}

	b.WriteString("</map>\n")
	return b.Bytes()
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
