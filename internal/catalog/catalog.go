package catalog

import (
	"context"
	"errors"

	"github.com/cinetrack/cinetrack/internal/model"
)

// ErrUnavailable signals the catalog could not serve the lookup. Callers are
// expected to fall back to client-supplied data rather than fail.
var ErrUnavailable = errors.New("movie catalog unavailable")

// Resolver maps an external catalog id to current canonical metadata.
type Resolver interface {
	MovieByID(ctx context.Context, id int64) (*model.MovieSummary, error)
}
