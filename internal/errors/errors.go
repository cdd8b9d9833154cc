package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrOCRUnavailable = &AppError{Code: "OCR_001", Message: "OCR service unavailable"}
	ErrOCRRejected    = &AppError{Code: "OCR_002", Message: "OCR service rejected image"}

	ErrImageNotFound    = &AppError{Code: "IMG_001", Message: "source image not found"}
	ErrImageUndecodable = &AppError{Code: "IMG_002", Message: "source image not decodable"}

	ErrTemplateMissing = &AppError{Code: "ASSET_001", Message: "card template missing"}
	ErrFontMissing     = &AppError{Code: "ASSET_002", Message: "font asset missing"}
	ErrLayoutInvalid   = &AppError{Code: "ASSET_003", Message: "layout table invalid"}

	ErrComposeFailed = &AppError{Code: "COMPOSE_001", Message: "card composition failed"}
	ErrOutputWrite   = &AppError{Code: "COMPOSE_002", Message: "failed to write output image"}

	ErrSessionNotFound = &AppError{Code: "SESSION_001", Message: "session not found"}
	ErrSessionComplete = &AppError{Code: "SESSION_002", Message: "session already completed"}
	ErrSessionImageCap = &AppError{Code: "SESSION_003", Message: "session already has all images"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
