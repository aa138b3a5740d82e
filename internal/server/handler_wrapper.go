package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	apierrors "github.com/maruel/colldb/internal/errors"
)

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters can be extracted by tagging struct fields with `path:"name"`,
// query parameters with `query:"name"`.
//
// Example:
//
//	type GetItemRequest struct {
//	    CollectionID string `path:"id"`
//	    ItemID       string `path:"itemId"`
//	}
//
//	func (h *ItemHandler) GetItem(ctx context.Context, req GetItemRequest) (*models.Item, error)
func Wrap[In any, Out any](fn func(context.Context, In) (*Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := io.ReadAll(r.Body)
		if err2 := r.Body.Close(); err == nil {
			err = err2
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read request body", "err", err)
			writeError(w, apierrors.BadRequest("Failed to read request body"))
			return
		}
		var input In
		if len(body) > 0 {
			d := json.NewDecoder(bytes.NewReader(body))
			if err := d.Decode(&input); err != nil {
				slog.ErrorContext(ctx, "Failed to decode request body", "err", err)
				writeError(w, apierrors.BadRequest("Invalid request body"))
				return
			}
		}

		populatePathParams(r, &input)
		populateQueryParams(r, &input)

		output, err := fn(ctx, input)
		if err != nil {
			statusCode := http.StatusInternalServerError
			errorCode := apierrors.ErrInternal
			message := "Internal server error"

			var ewsErr apierrors.ErrorWithStatus
			if errors.As(err, &ewsErr) {
				statusCode = ewsErr.StatusCode()
				errorCode = ewsErr.Code()
				message = ewsErr.Error()
			}

			// The full error (including any wrapped cause) goes to the log
			// only; clients get the mapped status and message.
			slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
			writeErrorResponse(w, statusCode, errorCode, message)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "Failed to encode response", "err", err)
		}
	})
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`.
func populatePathParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}

	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("path")
		if tag == "" {
			continue
		}
		paramValue := r.PathValue(tag)
		if paramValue == "" {
			continue
		}
		if field.Type.Kind() == reflect.String {
			elem.Field(i).SetString(paramValue)
		}
	}
}

// populateQueryParams extracts query parameters from the request and populates
// struct fields tagged with `query:"paramName"`.
func populateQueryParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}

	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" {
			continue
		}
		paramValue := query.Get(tag)
		if paramValue == "" {
			continue
		}
		if field.Type.Kind() == reflect.String {
			elem.Field(i).SetString(paramValue)
		}
	}
}

func writeError(w http.ResponseWriter, err *apierrors.APIError) {
	writeErrorResponse(w, err.StatusCode(), err.Code(), err.Error())
}

// writeErrorResponse writes an error response as JSON.
func writeErrorResponse(w http.ResponseWriter, statusCode int, code apierrors.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
