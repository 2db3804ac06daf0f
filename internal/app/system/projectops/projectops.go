// Package projectops is the read-modify-write cycle shared by the project
// and task handlers: load one project, check the caller's expected version,
// apply a pure mutation, and save it back with a version compare-and-swap.
package projectops

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	projectstore "github.com/dalemusser/collabify/internal/app/store/projects"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/domain/models"
)

// Load fetches a project by public id.
func Load(ctx context.Context, store *projectstore.Store, projectID string) (models.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return models.Project{}, apierr.Validation("Missing or invalid project ID")
	}
	p, err := store.GetByProjectID(ctx, projectID)
	if err != nil {
		return models.Project{}, storeErr(err)
	}
	return p, nil
}

// Mutate loads the project, rejects a stale expected version, runs fn and
// saves the result. fn must not touch storage. When fn returns an error
// nothing is written. When fn reports changed == false the save is skipped
// and the loaded project is returned.
func Mutate(ctx context.Context, store *projectstore.Store, projectID string, expect *int64, fn func(p *models.Project) (changed bool, err error)) (models.Project, error) {
	p, err := Load(ctx, store, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if expect != nil && *expect != p.Version {
		return models.Project{}, apierr.Conflict("")
	}

	changed, err := fn(&p)
	if err != nil {
		return models.Project{}, err
	}
	if !changed {
		return p, nil
	}
	if err := store.Save(ctx, &p); err != nil {
		return models.Project{}, storeErr(err)
	}
	return p, nil
}

// ExpectedVersion returns the version the client says it read: the body
// value when present, otherwise an If-Match header. nil means the client
// did not send one.
func ExpectedVersion(r *http.Request, fromBody *int64) (*int64, error) {
	if fromBody != nil {
		return fromBody, nil
	}
	h := strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
	h = strings.TrimPrefix(h, "W/")
	h = strings.Trim(h, `"`)
	if h == "" || h == "*" {
		return nil, nil
	}
	v, err := strconv.ParseInt(h, 10, 64)
	if err != nil || v < 0 {
		return nil, apierr.Validation("Invalid If-Match version")
	}
	return &v, nil
}

// SetETag exposes the project version so clients can send it back.
func SetETag(w http.ResponseWriter, p models.Project) {
	w.Header().Set("ETag", `"`+strconv.FormatInt(p.Version, 10)+`"`)
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, projectstore.ErrNotFound):
		return apierr.NotFound("Project not found")
	case errors.Is(err, projectstore.ErrConflict):
		return apierr.Conflict("")
	default:
		return err
	}
}
