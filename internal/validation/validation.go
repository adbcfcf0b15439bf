package validation

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"movesight/internal/errors"
	"movesight/shared/types"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func DecodeDetectRequest(r *http.Request) (*types.DetectRequest, error) {
	var req types.DetectRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func DecodeDiffRequest(r *http.Request) (*types.DiffRequest, error) {
	var req types.DiffRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, errors.ValidationError("invalid request", fieldErrors(err))
	}
	return &req, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.TooLarge("request body too large", map[string]int64{"max_bytes": tooLarge.Limit})
		}
		return errors.ValidationError("invalid request body", err.Error())
	}
	return nil
}

// fieldErrors maps each failing JSON field to the rule it broke.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["request"] = err.Error()
		return out
	}
	for _, e := range verrs {
		out[strings.ToLower(e.Field())] = e.Tag()
	}
	return out
}
