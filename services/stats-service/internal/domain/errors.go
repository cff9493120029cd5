package domain

import "fmt"

type ErrCode string

const (
	CodeInvalid  ErrCode = "invalid"
	CodeNotFound ErrCode = "not_found"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func ErrInvalid(msg string) error { return &AppError{Code: CodeInvalid, Message: msg} }
func ErrInvalidMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeInvalid, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error { return &AppError{Code: CodeNotFound, Message: msg} }
