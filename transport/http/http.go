package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/segmentio/ksuid"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
)

// MaxRequestSize is the largest find request body the handler accepts
const MaxRequestSize = 1024 * 1024

// Handler returns an http handler that serves the database as a REST API
// POST "/collections/{collection}/find" (json object in request body: {"query": {}, "sort": {}, "projection": {}})
// GET "/collections" (json array of collection names)
func Handler(db *flatdb.DB) (http.Handler, error) {
	router := mux.NewRouter()
	findCollection := "/collections/{collection}/find"
	listCollections := "/collections"
	logger := db.Logger()

	// FIND records
	logger.Debug(context.Background(), fmt.Sprintf("registered endpoint: POST %s", findCollection), map[string]any{})
	router.HandleFunc(findCollection, func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		start := time.Now()
		ctx := flatdb.NewMetadata(map[string]any{
			flatdb.MetadataKeyRequestID: requestID(r),
		}).ToContext(r.Context())
		tags := func() map[string]any {
			return map[string]any{
				"request.path": r.URL.Path,
				"request.vars": vars,
				"collection":   vars["collection"],
				"duration":     float64(time.Since(start).Microseconds()) / float64(1000),
			}
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestSize))
		if err != nil {
			httpError(w, errors.Wrap(err, errors.Validation, "failed to read request body"))
			return
		}
		if len(body) == 0 {
			body = []byte("{}")
		}
		req, err := flatdb.ParseFindRequest(body, db.ParseOpts()...)
		if err != nil {
			logger.Error(ctx, "invalid find request", err, tags())
			httpError(w, err)
			return
		}
		results, err := db.Find(ctx, vars["collection"], req.Query, req.Options)
		if err != nil {
			logger.Error(ctx, "failed to find records", err, tags())
			httpError(w, err)
			return
		}
		logger.Debug(ctx, "find executed", tags())
		httpJSON(w, http.StatusOK, results)
	}).Methods(http.MethodPost)

	// LIST collections
	logger.Debug(context.Background(), fmt.Sprintf("registered endpoint: GET %s", listCollections), map[string]any{})
	router.HandleFunc(listCollections, func(w http.ResponseWriter, r *http.Request) {
		httpJSON(w, http.StatusOK, db.Collections())
	}).Methods(http.MethodGet)
	return router, nil
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return ksuid.New().String()
}

// StatusCode returns the http status code of the error
func StatusCode(err error) int {
	switch errors.Extract(err).Code {
	case errors.Validation:
		return http.StatusBadRequest
	case errors.NotFound:
		return http.StatusNotFound
	case errors.Malformed:
		return http.StatusUnprocessableEntity
	case errors.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, err error) {
	e := errors.Extract(err).RemoveError()
	if e.Code == 0 {
		e.Code = errors.Internal
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(e))
	_, _ = w.Write([]byte(e.Error()))
}

func httpJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
