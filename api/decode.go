package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/Skryldev/jobly-api/sqlbuild"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads exactly one JSON object into dst. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return decodeOne(dec, dst)
}

func decodeOne(dec *json.Decoder, dst any) error {
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// decodePatch reads a partial-update body. Every member must be a JSON
// scalar; null clears a nullable column.
func decodePatch(w http.ResponseWriter, r *http.Request) (sqlbuild.Fields, error) {
	var fields sqlbuild.Fields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decodeOne(dec, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = sqlbuild.Fields{}
	}
	return fields, nil
}

// queryFilter turns the query string into a search filter. Values stay
// text; the predicate builder coerces them per key. Repeating a key is an
// error.
func queryFilter(r *http.Request) (sqlbuild.Filter, error) {
	q := r.URL.Query()
	filter := make(sqlbuild.Filter, len(q))
	for key, vals := range q {
		if len(vals) != 1 {
			return nil, badRequest("query parameter %s given %d times", key, len(vals))
		}
		filter[key] = sqlbuild.Text(vals[0])
	}
	return filter, nil
}

func parseJobID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("job id must be a positive integer, got %q", raw)
	}
	return id, nil
}
