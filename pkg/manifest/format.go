package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"

	"github.com/magiconair/properties"
)

const propertiesExt = ".properties"

var (
	errTrailingData = errors.New("invalid character after top-level value")
	errNotAnObject  = errors.New("manifest root must be a JSON object")
	errEmptyJSON    = errors.New("unexpected end of JSON input")
)

// ParseRaw converts file contents into a Manifest, choosing the format from
// the file extension: .properties files use the properties parser and
// everything else is parsed as JSON. Parse failures are CodeMalformed errors
// carrying the absolute file path.
func ParseRaw(file string, data []byte) (Manifest, error) {
	var (
		m   Manifest
		err error
	)
	if filepath.Ext(file) == propertiesExt {
		m, err = parseProperties(data)
	} else {
		m, err = parseJSON(data)
	}
	if err != nil {
		return nil, newMalformedError(absPath(file), err)
	}
	return m, nil
}

func parseJSON(data []byte) (Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyJSON
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, errNotAnObject
	}
	return Manifest(obj), nil
}

func parseProperties(data []byte) (Manifest, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}

	m := make(Manifest, p.Len())
	for key, value := range p.Map() {
		m[key] = value
	}
	return m, nil
}
