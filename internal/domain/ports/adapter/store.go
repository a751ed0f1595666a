package adapter

import "context"

// ObjectStore uploads a local file to a remote blob store under a
// collision-resistant object name and returns a publicly resolvable URL.
// It carries no retry logic; failures surface to the caller.
type ObjectStore interface {
	Upload(ctx context.Context, localPath string) (url string, err error)
}
