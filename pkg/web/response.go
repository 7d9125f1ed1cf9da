// Package web defines common components for a web application.
package web

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Response provides type for explicit json encoded error response.
type Response struct {
	Detail string `json:"detail"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Detail: err.Error()}
}

// BindingError converts request binding err into a readable json response.
func BindingError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return Response{Detail: ve[0].Field() + GetErrorMsg(ve[0])}
	}

	return Response{Detail: "invalid request body"}
}

// GetErrorMsg returns the message for a failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "txtype":
		return " must be DEPOSIT or WITHDRAWAL"
	}

	return " is invalid"
}

// QueryInt parses an integer query parameter, def is returned when s is empty or malformed.
func QueryInt(s string, def int64) int64 {
	if s == "" {
		return def
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}

	return v
}
