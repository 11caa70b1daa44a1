// Package storage persists JSON documents such as finalized audits and
// anomaly reports, and reads the phase artifacts other pipeline stages
// leave behind.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bizhealth/pkg/platform/sentinel"
)

// DocumentStore saves and loads named JSON documents. Implementations
// return sentinel.ErrNotFound for missing documents and sentinel.ErrCorrupt
// for documents that exist but cannot be decoded.
type DocumentStore interface {
	// Put encodes v under name and returns the location it was written to.
	Put(ctx context.Context, name string, v any) (string, error)
	// Get decodes the document stored under name into v.
	Get(ctx context.Context, name string, v any) error
}

// validateName rejects names that would escape the store's root.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("document %s: %w", name, sentinel.ErrNotFound)
}

func corrupt(name string, err error) error {
	return fmt.Errorf("document %s: %w: %v", name, sentinel.ErrCorrupt, err)
}
