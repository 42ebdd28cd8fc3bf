package model

// CredentialTypeInfo describes a credential type and the fields it needs.
type CredentialTypeInfo struct {
	Type             string               `json:"type" yaml:"type"`
	DisplayName      string               `json:"displayName" yaml:"displayName"`
	Description      string               `json:"description,omitempty" yaml:"description"`
	DocumentationURL string               `json:"documentationUrl,omitempty" yaml:"documentationUrl"`
	Properties       []CredentialProperty `json:"properties" yaml:"properties"`
}

// CredentialProperty is one field of a credential type's data payload.
type CredentialProperty struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Default     any    `json:"default,omitempty" yaml:"default"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// CredentialTypeSummary is a credential type listing entry. NodeCount is the
// number of catalogued nodes that accept the type.
type CredentialTypeSummary struct {
	Type        string
	DisplayName string
	Description string
	NodeCount   int
}

// NodeInfo is a catalogued node type and the credentials it declares.
type NodeInfo struct {
	NodeType    string           `yaml:"nodeType"`
	DisplayName string           `yaml:"displayName"`
	Credentials []NodeCredential `yaml:"credentials"`
}

// NodeCredential is a credential slot declared by a node. A nil Required
// means the node did not say, which counts as required.
type NodeCredential struct {
	Name           string         `yaml:"name"`
	Required       *bool          `yaml:"required"`
	DisplayOptions map[string]any `yaml:"displayOptions"`
}

// IsRequired reports whether the credential is required. Only an explicit
// false makes it optional.
func (c NodeCredential) IsRequired() bool {
	return c.Required == nil || *c.Required
}

// Catalog is a set of credential types and nodes that can be imported into a
// NodeCatalog.
type Catalog struct {
	CredentialTypes []CredentialTypeInfo `yaml:"credentialTypes"`
	Nodes           []NodeInfo           `yaml:"nodes"`
}
