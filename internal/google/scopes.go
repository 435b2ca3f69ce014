package google

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidScope is returned when the configured scope set is empty or
// contains a value that is not an absolute https scope URL.
var ErrInvalidScope = errors.New("invalid OAuth scope")

// ValidateScopes rejects an empty scope set and any scope that is not an
// absolute https URL such as https://www.googleapis.com/auth/drive.
func ValidateScopes(scopes []string) error {
	if len(scopes) == 0 {
		return fmt.Errorf("%w: no scopes configured", ErrInvalidScope)
	}
	for i, scope := range scopes {
		if strings.TrimSpace(scope) == "" {
			return fmt.Errorf("%w: scope %d is empty", ErrInvalidScope, i)
		}
		if strings.ContainsAny(scope, " \t\n") {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidScope, scope)
		}
		u, err := url.Parse(scope)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidScope, scope, err)
		}
		if u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%w: %q must be an absolute https URL", ErrInvalidScope, scope)
		}
	}
	return nil
}
