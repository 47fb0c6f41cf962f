package contract

import "errors"

// Error kinds surfaced by the report engine. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	// ErrOption marks unsupported or contradictory options.
	ErrOption = errors.New("invalid option")

	// ErrDataAssumption marks input that violates an upstream filtering contract,
	// such as a snapshot without an import timestamp reaching the aggregator.
	ErrDataAssumption = errors.New("data assumption violated")

	// ErrSerialization marks a report that could not be written.
	ErrSerialization = errors.New("serialization failed")
)
