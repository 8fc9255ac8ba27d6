// Package cacheerr defines the sentinel errors shared by the instance
// caches and their loaders, per spec section 7's error taxonomy.
package cacheerr

import "errors"

var (
	// ErrUnauthorized is returned by a rerank-model loader when the
	// tenant's credentials for a provider/model are rejected. The rerank
	// cache's caller (not the cache itself) catches this with errors.Is
	// and degrades to "no rerank runner" instead of failing the request.
	ErrUnauthorized = errors.New("cacheerr: unauthorized")

	// ErrUnsupportedBackend is returned by the vector-processor registry
	// when asked to dispatch an unregistered backend tag. Fatal for the
	// request; never caught and downgraded.
	ErrUnsupportedBackend = errors.New("cacheerr: unsupported vector backend")
)
