// Package models contains database model definitions.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AccessLevel is the access granted for a single UI area.
type AccessLevel string

const (
	// AccessHidden hides the UI area completely.
	AccessHidden AccessLevel = "hidden"
	// AccessView grants read-only access to the UI area.
	AccessView AccessLevel = "view"
	// AccessFull grants full read-write access to the UI area.
	AccessFull AccessLevel = "full"
)

// PermissionNode is either a leaf access level for a UI area or a nested
// subtree of sub-area nodes (e.g. the Settings area with per-screen levels).
type PermissionNode struct {
	// Level is set when the node is a leaf.
	Level AccessLevel
	// Children is set when the node is a nested subtree.
	Children PermissionTree
}

// IsLeaf reports whether the node carries a plain access level.
func (n PermissionNode) IsLeaf() bool {
	return n.Children == nil
}

// MarshalJSON encodes a leaf as a bare string and a subtree as an object,
// matching the document shape the UI consumes.
func (n PermissionNode) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(string(n.Level))
	}

	return json.Marshal(n.Children)
}

// UnmarshalJSON accepts either a bare access-level string or a nested object.
func (n *PermissionNode) UnmarshalJSON(data []byte) error {
	var leaf string
	if err := json.Unmarshal(data, &leaf); err == nil {
		n.Level = AccessLevel(leaf)
		n.Children = nil

		return nil
	}

	var children PermissionTree
	if err := json.Unmarshal(data, &children); err != nil {
		return fmt.Errorf("permission node is neither a level nor a subtree: %w", err)
	}

	n.Level = ""
	n.Children = children

	return nil
}

// PermissionTree maps a UI-area name to its access node.
// It is stored as a JSON document in a single database column.
type PermissionTree map[string]PermissionNode

// Value implements driver.Valuer so gorm can persist the tree as JSON.
func (t PermissionTree) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}

	out, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permission tree: %w", err)
	}

	return string(out), nil
}

// Scan implements sql.Scanner so gorm can load the tree from its JSON column.
func (t *PermissionTree) Scan(value interface{}) error {
	if value == nil {
		*t = PermissionTree{}
		return nil
	}

	var raw []byte

	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported permission tree column type %T", value)
	}

	if len(raw) == 0 {
		*t = PermissionTree{}
		return nil
	}

	return json.Unmarshal(raw, t)
}

// Leaf builds a leaf node with the given access level.
func Leaf(level AccessLevel) PermissionNode {
	return PermissionNode{Level: level}
}

// Subtree builds a nested node from the given tree.
func Subtree(children PermissionTree) PermissionNode {
	return PermissionNode{Children: children}
}
