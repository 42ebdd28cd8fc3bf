package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
	"github.com/ericfisherdev/credmcp/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NodeCatalog = (*NodeCatalogRepo)(nil)

// NodeCatalogRepo is the SQLite implementation of the NodeCatalog port.
type NodeCatalogRepo struct {
	db *DB
}

// NewNodeCatalogRepo creates a new NodeCatalogRepo backed by the given DB.
func NewNodeCatalogRepo(db *DB) *NodeCatalogRepo {
	return &NodeCatalogRepo{db: db}
}

// GetCredentialTypeInfo retrieves a credential type by name. Returns nil, nil
// if the type is not catalogued.
func (r *NodeCatalogRepo) GetCredentialTypeInfo(ctx context.Context, credType string) (*model.CredentialTypeInfo, error) {
	const query = `SELECT type, display_name, description, documentation_url, properties
		FROM credential_types WHERE type = ?`

	var (
		info       model.CredentialTypeInfo
		properties string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, credType).Scan(
		&info.Type, &info.DisplayName, &info.Description, &info.DocumentationURL, &properties,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential type %s: %w", credType, err)
	}

	if err := json.Unmarshal([]byte(properties), &info.Properties); err != nil {
		return nil, fmt.Errorf("decode properties of %s: %w", credType, err)
	}

	return &info, nil
}

// ListCredentialTypes returns credential types whose type or display name
// contains filter, ordered by type. NodeCount counts the catalogued nodes
// that declare the type.
func (r *NodeCatalogRepo) ListCredentialTypes(ctx context.Context, filter string) ([]model.CredentialTypeSummary, error) {
	const query = `SELECT ct.type, ct.display_name, ct.description, COUNT(nc.node_type)
		FROM credential_types ct
		LEFT JOIN node_credentials nc ON nc.name = ct.type
		WHERE ? = '' OR ct.type LIKE ? ESCAPE '\' OR ct.display_name LIKE ? ESCAPE '\'
		GROUP BY ct.type
		ORDER BY ct.type`

	pattern := "%" + escapeLike(filter) + "%"

	rows, err := r.db.Reader.QueryContext(ctx, query, filter, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("list credential types: %w", err)
	}
	defer rows.Close()

	types := []model.CredentialTypeSummary{}
	for rows.Next() {
		var s model.CredentialTypeSummary
		if err := rows.Scan(&s.Type, &s.DisplayName, &s.Description, &s.NodeCount); err != nil {
			return nil, fmt.Errorf("scan credential type: %w", err)
		}
		types = append(types, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential types: %w", err)
	}

	return types, nil
}

// GetNodeByType retrieves a node and its credential slots in declaration
// order. Returns nil, nil if the node is not catalogued.
func (r *NodeCatalogRepo) GetNodeByType(ctx context.Context, nodeType string) (*model.NodeInfo, error) {
	const nodeQuery = `SELECT node_type, display_name FROM nodes WHERE node_type = ?`

	var node model.NodeInfo
	err := r.db.Reader.QueryRowContext(ctx, nodeQuery, nodeType).Scan(&node.NodeType, &node.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", nodeType, err)
	}

	const credQuery = `SELECT name, required, display_options
		FROM node_credentials WHERE node_type = ? ORDER BY position, name`

	rows, err := r.db.Reader.QueryContext(ctx, credQuery, nodeType)
	if err != nil {
		return nil, fmt.Errorf("list credentials of node %s: %w", nodeType, err)
	}
	defer rows.Close()

	for rows.Next() {
		cred, err := scanNodeCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential of node %s: %w", nodeType, err)
		}
		node.Credentials = append(node.Credentials, *cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials of node %s: %w", nodeType, err)
	}

	return &node, nil
}

// Import upserts every credential type and node of catalog in a single
// transaction. A node's credential slots are replaced, not merged.
func (r *NodeCatalogRepo) Import(ctx context.Context, catalog *model.Catalog) error {
	if catalog == nil {
		return nil
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const typeQuery = `INSERT INTO credential_types (type, display_name, description, documentation_url, properties)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type) DO UPDATE SET
			display_name = excluded.display_name,
			description = excluded.description,
			documentation_url = excluded.documentation_url,
			properties = excluded.properties`

	for _, ct := range catalog.CredentialTypes {
		props := ct.Properties
		if props == nil {
			props = []model.CredentialProperty{}
		}
		encoded, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("encode properties of %s: %w", ct.Type, err)
		}

		if _, err := tx.ExecContext(ctx, typeQuery,
			ct.Type, ct.DisplayName, ct.Description, ct.DocumentationURL, string(encoded),
		); err != nil {
			return fmt.Errorf("upsert credential type %s: %w", ct.Type, err)
		}
	}

	const nodeQuery = `INSERT INTO nodes (node_type, display_name) VALUES (?, ?)
		ON CONFLICT(node_type) DO UPDATE SET display_name = excluded.display_name`
	const clearQuery = `DELETE FROM node_credentials WHERE node_type = ?`
	const credQuery = `INSERT INTO node_credentials (node_type, name, required, display_options, position)
		VALUES (?, ?, ?, ?, ?)`

	for _, node := range catalog.Nodes {
		if _, err := tx.ExecContext(ctx, nodeQuery, node.NodeType, node.DisplayName); err != nil {
			return fmt.Errorf("upsert node %s: %w", node.NodeType, err)
		}
		if _, err := tx.ExecContext(ctx, clearQuery, node.NodeType); err != nil {
			return fmt.Errorf("clear credentials of node %s: %w", node.NodeType, err)
		}

		for i, cred := range node.Credentials {
			var required sql.NullBool
			if cred.Required != nil {
				required = sql.NullBool{Bool: *cred.Required, Valid: true}
			}

			var displayOptions sql.NullString
			if cred.DisplayOptions != nil {
				encoded, err := json.Marshal(cred.DisplayOptions)
				if err != nil {
					return fmt.Errorf("encode display options of %s/%s: %w", node.NodeType, cred.Name, err)
				}
				displayOptions = sql.NullString{String: string(encoded), Valid: true}
			}

			if _, err := tx.ExecContext(ctx, credQuery,
				node.NodeType, cred.Name, required, displayOptions, i,
			); err != nil {
				return fmt.Errorf("insert credential %s of node %s: %w", cred.Name, node.NodeType, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog import: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNodeCredential(s scanner) (*model.NodeCredential, error) {
	var (
		cred           model.NodeCredential
		required       sql.NullBool
		displayOptions sql.NullString
	)

	if err := s.Scan(&cred.Name, &required, &displayOptions); err != nil {
		return nil, err
	}

	if required.Valid {
		v := required.Bool
		cred.Required = &v
	}
	if displayOptions.Valid {
		if err := json.Unmarshal([]byte(displayOptions.String), &cred.DisplayOptions); err != nil {
			return nil, fmt.Errorf("decode display options: %w", err)
		}
	}

	return &cred, nil
}

// escapeLike escapes LIKE wildcards so filter matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
