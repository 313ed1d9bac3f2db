package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrConfiguration      = fmt.Errorf("configuration error")
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Traversal errors
	ErrTraversal    = fmt.Errorf("directory traversal failed")
	ErrNotDirectory = fmt.Errorf("not a directory")

	// Remote service errors
	ErrRemoteOperation = fmt.Errorf("remote operation failed")
	ErrAlbumNotFound   = fmt.Errorf("album not found")
	ErrAssetNotFound   = fmt.Errorf("asset not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
