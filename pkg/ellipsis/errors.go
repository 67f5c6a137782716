package ellipsis

import (
	"errors"
	"fmt"
)

// ErrTargetNotFound is wrapped by the ConfigurationError returned when no
// target element was given or the selector matched nothing.
var ErrTargetNotFound = errors.New("target element not found")

// ConfigurationError reports options that cannot name a target element.
type ConfigurationError struct {
	Selector string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("ellipsis: %v", e.Err)
	}
	return fmt.Sprintf("ellipsis: selector %q: %v", e.Selector, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// StyleWarning records a declaration of the target that could not be used
// as a pixel length and the value measured with instead.
type StyleWarning struct {
	Property   string
	Value      string
	Substitute string
}

func (w StyleWarning) String() string {
	return fmt.Sprintf("%s: %q is not a pixel length, using %s", w.Property, w.Value, w.Substitute)
}
