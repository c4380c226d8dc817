package prefs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Snapshot block labels, in the order they are written.
const (
	LabelBool      = "boolean settings"
	LabelInt       = "int settings"
	LabelLong      = "long settings"
	LabelFloat     = "float settings"
	LabelString    = "string settings"
	LabelStringSet = "string set settings"
)

// ErrSnapshotParse reports a malformed snapshot block.
var ErrSnapshotParse = errors.New("malformed preference snapshot")

// WriteSnapshot serializes values as six labeled JSON blocks: a label
// line followed by a single-line JSON object, one block per value kind.
func WriteSnapshot(w io.Writer, values map[string]Value) error {
	bools := map[string]bool{}
	ints := map[string]int32{}
	longs := map[string]int64{}
	floats := map[string]float32{}
	strs := map[string]string{}
	sets := map[string][]string{}

	for k, v := range values {
		switch v.Kind() {
		case KindBool:
			bools[k], _ = v.AsBool()
		case KindInt:
			ints[k], _ = v.AsInt()
		case KindLong:
			longs[k], _ = v.AsLong()
		case KindFloat:
			floats[k], _ = v.AsFloat()
		case KindString:
			strs[k], _ = v.AsString()
		case KindStringSet:
			sets[k], _ = v.AsStringSet()
		}
	}

	blocks := []struct {
		label string
		data  any
	}{
		{LabelBool, bools},
		{LabelInt, ints},
		{LabelLong, longs},
		{LabelFloat, floats},
		{LabelString, strs},
		{LabelStringSet, sets},
	}

	var buf bytes.Buffer
	for i, blk := range blocks {
		if i > 0 {
			buf.WriteByte('\n')
		}
		data, err := json.Marshal(blk.data)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", blk.label, err)
		}
		buf.WriteString(blk.label)
		buf.WriteByte('\n')
		buf.Write(data)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadSnapshot parses the output of WriteSnapshot. Lines that are not
// labels are skipped; a label must be followed by a valid JSON line.
func ReadSnapshot(r io.Reader) (map[string]Value, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	values := make(map[string]Value)
	for sc.Scan() {
		label := strings.TrimSuffix(sc.Text(), "\r")
		decode, ok := blockDecoders[label]
		if !ok {
			continue
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %q has no data line", ErrSnapshotParse, label)
		}
		if err := decode([]byte(sc.Text()), values); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotParse, label, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

var blockDecoders = map[string]func([]byte, map[string]Value) error{
	LabelBool: func(data []byte, out map[string]Value) error {
		var m map[string]bool
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = Bool(v)
		}
		return nil
	},
	LabelInt: func(data []byte, out map[string]Value) error {
		var m map[string]int32
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = Int(v)
		}
		return nil
	},
	LabelLong: func(data []byte, out map[string]Value) error {
		var m map[string]int64
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = Long(v)
		}
		return nil
	},
	LabelFloat: func(data []byte, out map[string]Value) error {
		var m map[string]float32
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = Float(v)
		}
		return nil
	},
	LabelString: func(data []byte, out map[string]Value) error {
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = String(v)
		}
		return nil
	},
	LabelStringSet: func(data []byte, out map[string]Value) error {
		var m map[string][]string
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		for k, v := range m {
			out[k] = StringSet(v...)
		}
		return nil
	},
}

// Replace clears s and stores values in a single commit.
func Replace(s Store, values map[string]Value) error {
	e := s.Edit().Clear()
	for _, k := range Keys(values) {
		e.Put(k, values[k])
	}
	return e.Commit()
}
