// Package catalog reads node catalogs in YAML form and ships a default one.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the embedded catalog of common credential types and nodes.
func Default() (*model.Catalog, error) {
	c, err := Parse(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

// LoadFile parses the catalog file at path.
func LoadFile(path string) (*model.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Unknown keys are rejected, every credential
// type and node needs a name, and names must be unique.
func Parse(r io.Reader) (*model.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c model.Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validate(c *model.Catalog) error {
	types := make(map[string]bool, len(c.CredentialTypes))
	for i, ct := range c.CredentialTypes {
		if ct.Type == "" {
			return fmt.Errorf("credentialTypes[%d]: type is required", i)
		}
		if types[ct.Type] {
			return fmt.Errorf("credentialTypes[%d]: duplicate type %q", i, ct.Type)
		}
		types[ct.Type] = true

		for j, p := range ct.Properties {
			if p.Name == "" {
				return fmt.Errorf("credential type %s: properties[%d]: name is required", ct.Type, j)
			}
		}
	}

	nodes := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.NodeType == "" {
			return fmt.Errorf("nodes[%d]: nodeType is required", i)
		}
		if nodes[n.NodeType] {
			return fmt.Errorf("nodes[%d]: duplicate nodeType %q", i, n.NodeType)
		}
		nodes[n.NodeType] = true

		slots := make(map[string]bool, len(n.Credentials))
		for j, cred := range n.Credentials {
			if cred.Name == "" {
				return fmt.Errorf("node %s: credentials[%d]: name is required", n.NodeType, j)
			}
			if slots[cred.Name] {
				return fmt.Errorf("node %s: duplicate credential %q", n.NodeType, cred.Name)
			}
			slots[cred.Name] = true
		}
	}

	return nil
}
