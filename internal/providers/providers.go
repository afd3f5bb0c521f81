package providers

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the service has no record for the ISBN
var ErrNotFound = errors.New("no metadata found")

// Metadata is the bibliographic data a provider returns for an ISBN
type Metadata struct {
	Title    string
	Authors  []string
	Subjects []string
}

// Provider defines the interface for an ISBN metadata service
type Provider interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*Metadata, error)
}
