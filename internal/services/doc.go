// Package services holds the shared error taxonomy for external provider
// clients, plus the clients themselves in subpackages.
package services
