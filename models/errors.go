package models

import "fmt"

type ErrorBadRequest struct{ Message string }

type ErrorUnauthorized struct{ Message string }

type ErrorForbidden struct{ Message string }

type ErrorNotFound struct{ Message string }

type ErrorConflict struct{ Message string }

type ErrorInternalServer struct{ Message string }

func (e ErrorBadRequest) Error() string     { return e.Message }
func (e ErrorUnauthorized) Error() string   { return e.Message }
func (e ErrorForbidden) Error() string      { return e.Message }
func (e ErrorNotFound) Error() string       { return e.Message }
func (e ErrorConflict) Error() string       { return e.Message }
func (e ErrorInternalServer) Error() string { return e.Message }

func NewBadRequest(format string, args ...interface{}) error {
	return ErrorBadRequest{Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorized(format string, args ...interface{}) error {
	return ErrorUnauthorized{Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(format string, args ...interface{}) error {
	return ErrorForbidden{Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...interface{}) error {
	return ErrorNotFound{Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...interface{}) error {
	return ErrorConflict{Message: fmt.Sprintf(format, args...)}
}
