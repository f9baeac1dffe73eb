package common

import (
	"errors"
	"fmt"
)

var (
	ErrorInvalidValue = errors.New("invalid value")

	// ErrorConfiguration is returned for unknown curve or postbomb identifiers
	// and for noise model parameters that break t.b - t.a == 1.
	ErrorConfiguration = errors.New("configuration error")

	ErrorDomain = errors.New("domain error")
)

type CurveNotFoundError struct {
	ID string
}

func (e *CurveNotFoundError) Error() string {
	return fmt.Sprintf("calibration curve %q not found", e.ID)
}

// Is makes a missing curve match ErrorConfiguration.
func (e *CurveNotFoundError) Is(target error) bool {
	return target == ErrorConfiguration
}

func ConfigurationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorConfiguration, fmt.Sprintf(format, args...))
}

func DomainErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorDomain, fmt.Sprintf(format, args...))
}

func InvalidValuef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorInvalidValue, fmt.Sprintf(format, args...))
}
