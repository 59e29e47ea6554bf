// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/imagefield"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/models"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

var errInvalidPage = errors.New("invalid page")

type pageRequest struct {
	page  int
	limit int
}

func (p pageRequest) offset() int {
	return (p.page - 1) * p.limit
}

// parsePage reads ?page= and ?limit=. A bad page number is an error; a bad
// limit falls back to the default.
func parsePage(r *http.Request) (pageRequest, error) {
	p := pageRequest{page: 1, limit: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return pageRequest{}, errInvalidPage
		}
		p.page = n
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.limit = min(n, maxPageSize)
		}
	}
	return p, nil
}

// newPage builds the envelope. It returns errInvalidPage when the page lies
// past the last one.
func newPage[T any](r *http.Request, publicURL string, p pageRequest, count int, results []T) (models.Page[T], error) {
	if p.page > 1 && p.offset() >= count {
		return models.Page[T]{}, errInvalidPage
	}
	if results == nil {
		results = []T{}
	}

	page := models.Page[T]{Count: count, Results: results}
	if p.offset()+len(results) < count {
		page.Next = pageLink(r, publicURL, p.page+1)
	}
	if p.page > 1 {
		page.Previous = pageLink(r, publicURL, p.page-1)
	}
	return page, nil
}

func pageLink(r *http.Request, publicURL string, page int) *string {
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	link := publicURL + r.URL.Path
	if enc := q.Encode(); enc != "" {
		link += "?" + enc
	}
	return &link
}

// queryFlag treats 1, true and True as set.
func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "True":
		return true
	}
	return false
}

// viewerID returns the authenticated user's ID, or "" for anonymous callers.
func viewerID(r *http.Request) string {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u.ID
	}
	return ""
}

// imageBodyLimit caps JSON bodies that may carry a base64 image: the encoded
// size of the largest accepted image plus 1 MiB for the other fields.
func imageBodyLimit(cfg cliparse.Config) int64 {
	return cfg.MaxImageBytes*4/3 + 1<<20
}

// parseImageJSON decodes a capped JSON body into v. On failure it writes the
// response and returns false.
func parseImageJSON(w http.ResponseWriter, r *http.Request, cfg cliparse.Config, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, imageBodyLimit(cfg))
	err := middleware.ParseJSONBody(r, v)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	case err != nil:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func newImageDecoder(cfg cliparse.Config) *imagefield.Decoder {
	return imagefield.NewDecoder(
		imagefield.WithTokenLength(cfg.ImageTokenLength),
		imagefield.WithMaxBytes(cfg.MaxImageBytes),
		imagefield.WithValidator(imagefield.ImageValidator{
			MaxBytes: cfg.MaxImageBytes,
			MaxSide:  cfg.MaxImageSide,
		}),
	)
}

// imageErrorMessage turns a decoder error into a client-facing message.
func imageErrorMessage(err error) string {
	var downstream *imagefield.DownstreamError
	switch {
	case errors.Is(err, imagefield.ErrEmptyPayload):
		return "The submitted file is empty."
	case errors.Is(err, imagefield.ErrDecode):
		return "Invalid base64 image data."
	case errors.Is(err, imagefield.ErrUnsupportedFormat):
		return "Upload a valid image. Supported formats: jpeg, png, gif, bmp, tiff, webp."
	case errors.Is(err, imagefield.ErrInvalidInputType):
		return "Expected a base64 encoded image string or a file."
	case errors.As(err, &downstream):
		return "Upload a valid image: " + downstream.Err.Error()
	}
	return "Upload a valid image."
}
