package pkg

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/kontakt/internal/domain"
)

// Response is the JSON envelope every API answer uses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse replaces Data with per-field messages keyed by the
// JSON field name.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success answers 200 with data.
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, "success", data)
}

// Created answers 201 with the stored resource.
func Created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, "created", data)
}

// List answers 200 with one page of search results and its total.
func List(c *gin.Context, result any) {
	respond(c, http.StatusOK, "success", result)
}

// Error answers with the status mapped from err's domain code. Only the
// AppError message reaches the client. For 5xx answers err is also recorded
// on the gin context so the request log carries the underlying cause.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError && err != nil {
		_ = c.Error(err)
	}

	respond(c, status, msg, nil)
}

// ValidationError answers 400. validator.ValidationErrors become per-field
// messages; any other error is a plain bad request.
func ValidationError(c *gin.Context, err error) {
	writeBindError(c, err, nil)
}

// BindAndValidate binds the request into obj and runs its binding rules.
// On failure the 400 answer is already written and it returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		writeBindError(c, err, obj)
		return false
	}
	return true
}

// BindOptionalJSON is BindAndValidate for endpoints whose JSON body may be
// omitted. An empty body leaves obj at its zero value whatever the declared
// length, so chunked requests behave like Content-Length: 0.
func BindOptionalJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err != nil {
		writeBindError(c, err, obj)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		respond(c, http.StatusBadRequest, "bad request", nil)
		return
	}

	names := jsonFieldNames(obj)
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fields[name] = describeFieldError(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

func describeFieldError(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "min":
		return fmt.Sprintf("Must be at least %s%s", fe.Param(), unit)
	case "max":
		return fmt.Sprintf("Must be at most %s%s", fe.Param(), unit)
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// jsonFieldNames maps struct field names of obj to their JSON names.
// Untagged embedded structs are flattened. A nil or non-struct obj yields nil.
func jsonFieldNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make(map[string]string, t.NumField())
	addJSONFieldNames(t, names)
	return names
}

func addJSONFieldNames(t reflect.Type, names map[string]string) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if f.Anonymous && f.Type.Kind() == reflect.Struct && tag == "" {
			addJSONFieldNames(f.Type, names)
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			names[f.Name] = name
		}
	}
}
