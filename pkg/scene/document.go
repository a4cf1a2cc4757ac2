package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal serializes a document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes and validates JSON bytes. Settings missing from the
// input keep their [DefaultConfig] values.
func Unmarshal(data []byte) (Document, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a document as JSON to w.
func Write(d Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes and validates a JSON document from r.
func Read(r io.Reader) (Document, error) {
	d := Document{Config: DefaultConfig()}
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if d.Version == 0 {
		d.Version = FormatVersion
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// WriteFile writes a document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a document from a JSON file.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// =============================================================================
// Dataset Serialization API
// =============================================================================

// MarshalDataset serializes a dataset to pretty-printed JSON bytes.
func MarshalDataset(ds Dataset) ([]byte, error) {
	return json.MarshalIndent(ds, "", "  ")
}

// UnmarshalDataset deserializes and validates a JSON dataset.
func UnmarshalDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("unmarshal dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}
