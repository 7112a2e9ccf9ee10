package memoize

import "errors"

// Configuration errors. They are returned at wrap time; invalid values are
// never coerced.
var (
	// ErrNilFunc indicates the function to memoize is nil.
	ErrNilFunc = errors.New("memoize: function is nil")

	// ErrInvalidMaxSize indicates a negative max size.
	ErrInvalidMaxSize = errors.New("memoize: max size must be non-negative")

	// ErrInvalidTTL indicates a TTL that was set but is not positive.
	ErrInvalidTTL = errors.New("memoize: ttl must be positive")

	// ErrAlgorithmWithoutMaxSize indicates an algorithm chosen for an
	// unbounded cache, where no eviction can happen.
	ErrAlgorithmWithoutMaxSize = errors.New("memoize: algorithm requires a max size")

	// ErrInvalidAlgorithm indicates an algorithm id that is not a single
	// power-of-two flag.
	ErrInvalidAlgorithm = errors.New("memoize: algorithm must be a single power-of-two flag")

	// ErrUnknownAlgorithm indicates an algorithm with no registered factory.
	ErrUnknownAlgorithm = errors.New("memoize: algorithm not registered")
)

// Registry errors.
var (
	// ErrDuplicateAlgorithm indicates the algorithm already has a factory.
	ErrDuplicateAlgorithm = errors.New("memoize: algorithm already registered")

	// ErrNilFactory indicates a nil factory was registered.
	ErrNilFactory = errors.New("memoize: factory is nil")

	// ErrNilCache indicates a factory returned neither a cache nor an error.
	ErrNilCache = errors.New("memoize: factory returned a nil cache")
)

// Call errors.
var (
	// ErrResultType indicates a cached result does not have the type the
	// caller asked for.
	ErrResultType = errors.New("memoize: unexpected result type")
)

// Extension validation errors.
var (
	// ErrContractViolation marks each problem reported by Validate.
	ErrContractViolation = errors.New("memoize: extension contract violation")

	// ErrNoExtensions indicates ValidateExtensions found nothing beyond the
	// built-in algorithms.
	ErrNoExtensions = errors.New("memoize: no extension algorithms registered")
)
