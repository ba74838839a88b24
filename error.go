package polo

import "fmt"

type ExError struct {
	Code    int                    // error code
	Message string                 // error message
	Data    map[string]interface{} // business data
	Err     error                  // underlying cause, if any
}

func (e ExError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code: %v message: %v cause: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code: %v message: %v", e.Code, e.Message)
}

func (e ExError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an ExError carrying the same code.
func (e ExError) Is(target error) bool {
	t, ok := target.(ExError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

const (
	NotImplement = 10000 + iota
	UnHandleError

	//exchange api business error
	ErrAuthRequired = 20000 + iota
	ErrDataParse
	ErrRequestParams
	ErrEmptyResponse

	//network error
	ErrTimeout = 30000 + iota
	ErrBadRequest
	ErrBadResponse
)

var (
	ErrorAuthRequired  = ExError{Code: ErrAuthRequired, Message: "API key and secret required"}
	ErrorEmptyResponse = ExError{Code: ErrEmptyResponse, Message: "empty response from remote server"}
)
