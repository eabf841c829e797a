package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FlexBool is a boolean that tolerates the stringy flag values found in
// imported user documents ("True", "true", "False", "false") alongside real
// JSON booleans. It normalizes to a plain bool at the model boundary so the
// rest of the pipeline never compares raw strings.
type FlexBool bool

// Bool returns the normalized boolean value.
func (b FlexBool) Bool() bool {
	return bool(b)
}

// MarshalJSON always writes a real JSON boolean.
func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// UnmarshalJSON accepts booleans and the legacy string spellings.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid boolean flag %s", string(data))
	}

	switch s {
	case "true", "True":
		*b = true
	case "false", "False":
		*b = false
	default:
		return fmt.Errorf("invalid boolean flag %q", s)
	}

	return nil
}

// Affiliation binds a user to one organization with an enable flag and the
// role the user holds within that organization.
type Affiliation struct {
	// Organization is the organization name the binding applies to.
	Organization string `json:"organization"`
	// Role is the name of the role the user holds in the organization.
	Role string `json:"role"`
	// Enabled gates whether the binding is active.
	Enabled FlexBool `json:"enabled"`
}

// Active reports whether the affiliation contributes to permission
// resolution: it must be enabled and reference a non-empty role name.
func (a Affiliation) Active() bool {
	return a.Enabled.Bool() && a.Role != ""
}

// Affiliations is the ordered list of a user's organization bindings,
// stored as a JSON document in a single database column.
type Affiliations []Affiliation

// Value implements driver.Valuer so gorm can persist the list as JSON.
func (a Affiliations) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}

	out, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal affiliations: %w", err)
	}

	return string(out), nil
}

// Scan implements sql.Scanner so gorm can load the list from its JSON column.
func (a *Affiliations) Scan(value interface{}) error {
	if value == nil {
		*a = Affiliations{}
		return nil
	}

	var raw []byte

	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported affiliations column type %T", value)
	}

	if len(raw) == 0 {
		*a = Affiliations{}
		return nil
	}

	return json.Unmarshal(raw, a)
}
