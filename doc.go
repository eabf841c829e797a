// Package main provides the entry point for the CaseDesk service.
// It starts a Fiber web server that authenticates users against a local
// database or an external directory service, resolves per-organization
// permissions into a signed session token, and exposes the administrative
// endpoints for managing the directory connection settings. Data is
// persisted with gorm.
package main
