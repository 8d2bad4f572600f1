// Package codec converts team and registry state to and from stored
// documents. The registry depends only on the Codec contract; the concrete
// document format is chosen by configuration.
package codec

import (
	"errors"
	"fmt"

	"github.com/l1jgo/teams/internal/team"
)

// ErrCorrupt marks a document that could not be decoded. Callers skip the
// document and continue with the rest of the batch.
var ErrCorrupt = errors.New("corrupt document")

// Codec marshals documents in one concrete format.
type Codec interface {
	Name() string
	// Ext is the file extension without the dot.
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// RegistryDocument is the registry-level document. Only the registry id is
// stored.
type RegistryDocument struct {
	ID string `bson:"id" yaml:"id"`
}

// ForName returns the codec registered under name.
func ForName(name string) (Codec, error) {
	switch name {
	case "", "bson":
		return BSON{}, nil
	case "yaml":
		return YAML{}, nil
	}
	return nil, fmt.Errorf("unknown document format %q", name)
}

// EncodeTeam serializes a team's persisted state.
func EncodeTeam(c Codec, t *team.Team) ([]byte, error) {
	data, err := c.Marshal(t.Record())
	if err != nil {
		return nil, fmt.Errorf("encode team %s: %w", t.ID(), err)
	}
	return data, nil
}

// DecodeTeam rebuilds a team. Every failure wraps ErrCorrupt.
func DecodeTeam(c Codec, data []byte) (*team.Team, error) {
	var rec team.Record
	if err := c.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.Name(), err)
	}
	t, err := team.FromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return t, nil
}

// EncodeRegistry serializes the registry document.
func EncodeRegistry(c Codec, doc RegistryDocument) ([]byte, error) {
	data, err := c.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	return data, nil
}

// DecodeRegistry parses the registry document. Failures wrap ErrCorrupt.
func DecodeRegistry(c Codec, data []byte) (RegistryDocument, error) {
	var doc RegistryDocument
	if err := c.Unmarshal(data, &doc); err != nil {
		return RegistryDocument{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.Name(), err)
	}
	return doc, nil
}
