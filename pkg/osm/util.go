package osm

import (
	"context"
	"encoding/xml"
	"errors"
)

// errorType maps a scan error to a short label for metrics
func errorType(err error) string {
	var syntaxErr *xml.SyntaxError
	switch {
	case errors.Is(err, ErrMissingKey):
		return "missing_key"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &syntaxErr), errors.Is(err, ErrMalformed):
		return "syntax"
	default:
		return "read"
	}
}
