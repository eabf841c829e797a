// Package dirconfig manages the operator-editable directory settings: the
// connection document for the directory service and the two organizational-unit
// allow-lists. The documents are plain JSON files written by the administrative
// screens and read by the authentication core. File names and shapes are kept
// compatible with the documents the UI already produces.
package dirconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	directoryFile         = "ldapConfig.json"
	operatorAllowlistFile = "ldapOUConfig.user.json"
	customerAllowlistFile = "ldapOUConfig.customer.json"
)

// FilterContext selects which OU allow-list applies to a login.
type FilterContext string

const (
	// ContextOperator is the allow-list for regular operator principals.
	ContextOperator FilterContext = "operator"
	// ContextCustomer is the allow-list for customer-classified principals.
	ContextCustomer FilterContext = "customer"
)

// Directory holds the connection settings for the directory service.
// JSON field names follow the persisted document format.
type Directory struct {
	// URL is the directory server hostname or IP address.
	URL string `json:"url" validate:"required"`
	// Port is the directory server port (389 plain, 636 over TLS).
	Port int `json:"port"`
	// UseTLS selects an encrypted (ldaps) connection.
	UseTLS bool `json:"useTLS"`
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool `json:"skipVerify"`
	// BindDN is the service identity used for the search bind.
	BindDN string `json:"bindDN" validate:"required"`
	// BindCredentials is the secret for the service identity.
	BindCredentials string `json:"bindCredentials"`
	// SearchBase is the subtree base for principal searches.
	SearchBase string `json:"searchBase" validate:"required"`
	// SearchFilter is the filter template; the literal {{username}}
	// placeholder is substituted with the escaped handle.
	SearchFilter string `json:"searchFilter" validate:"required,contains={{username}}"`
}

// Configured reports whether a usable directory endpoint has been saved.
func (d Directory) Configured() bool {
	return d.URL != ""
}

// Address returns the directory URL scheme://host:port form, defaulting the
// port by transport when unset.
func (d Directory) Address() string {
	port := d.Port
	if port == 0 {
		if d.UseTLS {
			port = 636
		} else {
			port = 389
		}
	}

	scheme := "ldap"
	if d.UseTLS {
		scheme = "ldaps"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, d.URL, port)
}

// allowlistDoc is the persisted shape of an OU allow-list file.
type allowlistDoc struct {
	AllowedOUs []string `json:"allowedOUs"`
}

// Manager loads and persists the directory settings documents. Settings are
// cached in memory; Reload is called after an administrative save so no file
// reads happen mid-request.
type Manager struct {
	path string

	mu        sync.RWMutex
	directory Directory
	operator  []string
	customer  []string
}

// NewManager creates a manager rooted at the given settings directory and
// loads whatever documents already exist. Missing files are not an error:
// the directory stays unconfigured and the allow-lists stay empty.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}
	if err := m.Reload(); err != nil {
		return nil, err
	}

	return m, nil
}

// Reload re-reads all settings documents from disk.
func (m *Manager) Reload() error {
	var (
		dir      Directory
		operator allowlistDoc
		customer allowlistDoc
	)

	if err := m.readJSON(directoryFile, &dir); err != nil {
		return err
	}

	if err := m.readJSON(operatorAllowlistFile, &operator); err != nil {
		return err
	}

	if err := m.readJSON(customerAllowlistFile, &customer); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.directory = dir
	m.operator = operator.AllowedOUs
	m.customer = customer.AllowedOUs

	return nil
}

// Directory returns the current directory connection settings.
func (m *Manager) Directory() Directory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.directory
}

// SaveDirectory persists new directory connection settings and updates the
// in-memory snapshot.
func (m *Manager) SaveDirectory(d Directory) error {
	if err := m.writeJSON(directoryFile, d); err != nil {
		return err
	}

	m.mu.Lock()
	m.directory = d
	m.mu.Unlock()

	return nil
}

// AllowedOUs returns the allow-list for the given filter context.
func (m *Manager) AllowedOUs(fctx FilterContext) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if fctx == ContextCustomer {
		return m.customer
	}

	return m.operator
}

// SaveAllowedOUs persists a new allow-list for the given filter context and
// updates the in-memory snapshot.
func (m *Manager) SaveAllowedOUs(fctx FilterContext, allowed []string) error {
	file := operatorAllowlistFile
	if fctx == ContextCustomer {
		file = customerAllowlistFile
	}

	if err := m.writeJSON(file, allowlistDoc{AllowedOUs: allowed}); err != nil {
		return err
	}

	m.mu.Lock()
	if fctx == ContextCustomer {
		m.customer = allowed
	} else {
		m.operator = allowed
	}
	m.mu.Unlock()

	return nil
}

func (m *Manager) readJSON(name string, out interface{}) error {
	raw, err := os.ReadFile(filepath.Join(m.path, name))
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return nil
}

// writeJSON writes the document atomically: a temp file in the same
// directory followed by a rename.
func (m *Manager) writeJSON(name string, in interface{}) error {
	if err := os.MkdirAll(m.path, 0o750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	out, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	target := filepath.Join(m.path, name)

	tmp, err := os.CreateTemp(m.path, name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err = tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err = os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}
