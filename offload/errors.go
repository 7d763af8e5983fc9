package offload

import "errors"

var (
	// ErrResolution indicates the native engine's output layout could not be
	// determined for an aggregate shape. Callers must treat the node as
	// ineligible for offload; the pass never skips adaptation silently.
	ErrResolution = errors.New("native output resolution failed")

	// ErrSchemaDrift indicates a rebuilt aggregate's declared schema diverged
	// from the resolved native attributes. This is an internal-consistency
	// fault; continuing would corrupt query results.
	ErrSchemaDrift = errors.New("adapted aggregate schema drift")
)
