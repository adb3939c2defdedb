package api

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation errors name fields the way clients send them.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireName)
	}
}

func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// bindRecipeJSON decodes and validates a recipe payload. Top-level fields set
// to null are rejected: optional fields may be omitted but not nulled.
// It writes the 400 response itself and reports whether binding succeeded.
func bindRecipeJSON(c *gin.Context, obj interface{}) bool {
	body, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return false
	}
	if details := nullFields(body); len(details) > 0 {
		respondInvalidPayload(c, details)
		return false
	}
	if err := binding.JSON.BindBody(body, obj); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// nullFields lists the top-level keys of a JSON object whose value is null.
// Bodies that are not objects are left to the decoder to reject.
func nullFields(body []byte) []FieldError {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	var out []FieldError
	for key, raw := range fields {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			out = append(out, FieldError{Field: key, Rule: "null", Message: "must not be null"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
