package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates a structural mistake: duplicate or nil
	// registration, cycles, ambiguous inferred paths, missing hierarchy root.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeLifecycle indicates an initialize or shutdown step failed.
	ErrCodeLifecycle ErrorCode = "LIFECYCLE_ERROR"
	// ErrCodeAggregationInconsistency indicates a subcomponent reported a
	// state outside the known set.
	ErrCodeAggregationInconsistency ErrorCode = "AGGREGATION_INCONSISTENCY"
	// ErrCodeInvalidInput indicates invalid configuration values.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)
