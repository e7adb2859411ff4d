// Package options implements the functional option pattern shared by
// the configurable constructors in this module. Options are values
// built from setter functions, so a constructor can apply a mixed list
// of fallible and infallible settings and stop at the first bad one.
package options

// Option configures a target of type T. Values come from New and
// NoError; constructors hand the target to Apply.
type Option[T any] interface {
	apply(T) error
}

// optionFunc adapts a setter function to the Option interface.
type optionFunc[T any] func(T) error

func (f optionFunc[T]) apply(target T) error {
	return f(target)
}

// New wraps a validating setter. The error it returns aborts Apply.
func New[T any](fn func(T) error) Option[T] {
	return optionFunc[T](fn)
}

// NoError wraps a setter that cannot fail.
func NoError[T any](fn func(T)) Option[T] {
	return optionFunc[T](func(target T) error {
		fn(target)

		return nil
	})
}

// Apply runs opts against target in order and returns the first error.
// Settings applied before a failure stick, so callers should discard
// the target when Apply fails.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
