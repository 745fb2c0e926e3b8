// internal/location/project.go
package location

import (
	"context"
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned by a ProjectFinder when no project has the
// requested id.
var ErrProjectNotFound = errors.New("project not found")

// ErrTooManyCandidates is returned by a candidate source when more
// volunteers satisfy the constraint than the caller allowed it to load.
var ErrTooManyCandidates = errors.New("too many eligible volunteers")

// ProjectFinder loads the location of a stored project.
type ProjectFinder interface {
	FindProjectLocation(ctx context.Context, projectID string) (Descriptor, error)
}

// ProjectFinderFunc adapts a function to ProjectFinder.
type ProjectFinderFunc func(ctx context.Context, projectID string) (Descriptor, error)

func (f ProjectFinderFunc) FindProjectLocation(ctx context.Context, projectID string) (Descriptor, error) {
	return f(ctx, projectID)
}

// ResolutionError means eligibility could not be determined because the
// project itself could not be loaded. It is distinct from an empty match.
type ResolutionError struct {
	ProjectID string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve project %s: %v", e.ProjectID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// NotFound reports whether the project was missing rather than the lookup
// failing.
func (e *ResolutionError) NotFound() bool {
	return errors.Is(e.Err, ErrProjectNotFound)
}

// LoadProject loads a project's location through finder. Any failure,
// including a missing project, is wrapped in a *ResolutionError so callers
// can tell it apart from a project that simply matches nobody.
func LoadProject(ctx context.Context, finder ProjectFinder, projectID string) (Descriptor, error) {
	d, err := finder.FindProjectLocation(ctx, projectID)
	if err != nil {
		return Descriptor{}, &ResolutionError{ProjectID: projectID, Err: err}
	}
	return d, nil
}
