package http

import (
	"net/http"
	"strconv"

	"github.com/vorlage-dev/vorlage/pkg/api"
)

const (
	defaultPage = 1
	defaultSize = 10
	maxPageSize = 100
)

// pagination carries validated page parameters.
type pagination struct {
	page int
	size int
}

func (p pagination) limit() int  { return p.size }
func (p pagination) offset() int { return (p.page - 1) * p.size }

// paginate reads the page and size query parameters. Both violations are
// collected before writing, like body binding. Returns ok=false after
// writing the error response.
func paginate(w http.ResponseWriter, r *http.Request) (pagination, bool) {
	p := pagination{page: defaultPage, size: defaultSize}
	var errs []*api.Error

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, api.ValidationFailed("page", "page must be a positive integer"))
		} else {
			p.page = n
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			errs = append(errs, api.ValidationFailed("size", "size must be between 1 and 100"))
		} else {
			p.size = n
		}
	}

	if len(errs) > 0 {
		api.WriteErrors(w, errs...)
		return pagination{}, false
	}
	return p, true
}
