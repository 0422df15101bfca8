package repo

import "context"

// StorageRepo stores captured images
type StorageRepo interface {
	// Upload stores content on behalf of displayName and returns a shareable URL
	Upload(ctx context.Context, content []byte, displayName string) (string, error)
}
