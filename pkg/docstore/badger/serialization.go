package badger

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/docvault/pkg/docstore"
)

// Serialization Strategy
// ======================
//
// Records are stored as JSON. Identities and addresses serialize as hex
// strings (via their TextMarshaler implementations) and sealed pointers as
// base64, so a record inspected with badger's tooling is human-readable.
// JSON also tolerates schema evolution: adding a field does not invalidate
// existing records.
//
// Binary encodings (gob, protobuf) would be smaller and faster, but record
// values here are a few hundred bytes and are read far more often by humans
// debugging than by hot paths.

func marshalRegistry(reg *docstore.Registry) ([]byte, error) {
	data, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registry: %w", err)
	}
	return data, nil
}

func unmarshalRegistry(data []byte) (*docstore.Registry, error) {
	var reg docstore.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
	}
	return &reg, nil
}

func marshalDocument(doc *docstore.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

func unmarshalDocument(data []byte) (*docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}
