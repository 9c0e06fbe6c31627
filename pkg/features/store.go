package features

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// LoadBundle reads and validates a persisted bundle document. A
// document that cannot be parsed or fails schema validation is
// reported with ErrCodeSchema; callers treat that like a decode
// failure and either re-extract or degrade the row.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrCodeSchema, path, "failed to read bundle document", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, NewError(ErrCodeSchema, path, "malformed bundle document", err)
	}

	if err := bundle.Validate(); err != nil {
		return nil, NewError(ErrCodeSchema, path, "bundle document failed validation", err)
	}

	return &bundle, nil
}

// SaveBundle writes a bundle document atomically (temp file + rename)
// so a crashed run never leaves a half-written cache entry behind.
func SaveBundle(path string, bundle *Bundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundle, "", "    ")
	if err != nil {
		return NewError(ErrCodeSchema, path, "failed to encode bundle", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bundle-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
