package spin

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig indicates a configuration that cannot produce a
	// meaningful simulation.
	ErrInvalidConfig = errors.New("spin: invalid configuration")

	// ErrInvalidSpins indicates an explicit spin assignment that does not
	// match the node count or the spin mode.
	ErrInvalidSpins = errors.New("spin: invalid spin assignment")
)

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}
