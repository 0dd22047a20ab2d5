package result

import (
	"fmt"

	"github.com/pkg/errors"
)

// Result represents the result of a function execution
type Result struct {
	Code    ErrorCode
	Message string
}

// IsOK indicates if the execution succeeded
func (res Result) IsOK() bool {
	return res.Code == CodeOK
}

// IsError indicates if the execution results in an error
func (res Result) IsError() bool {
	return res.Code != CodeOK
}

// String returns the string representation of the result
func (res Result) String() string {
	return fmt.Sprintf("Result{code:%v, message:%v}", res.Code, res.Message)
}

// WithErrorCode attach the error code to the result
func (res Result) WithErrorCode(code ErrorCode) Result {
	res.Code = code
	return res
}

// Err converts a failed result into an error that keeps its code, and returns
// nil for a successful one.
func (res Result) Err() error {
	if res.IsOK() {
		return nil
	}
	return &resultError{res: res}
}

type resultError struct {
	res Result
}

func (e *resultError) Error() string {
	return e.res.Message
}

// -------------- Constructors -------------- //

// OK represents the success result
var OK = Result{Code: CodeOK}

// Error returns an error result
func Error(msgFormat string, a ...interface{}) Result {
	msg := fmt.Sprintf(msgFormat, a...)
	return Result{
		Code:    CodeGenericError,
		Message: msg,
	}
}

// FromError converts an error returned by a collaborator into a result. Errors
// produced by Result.Err keep their code; anything else is reported as a failed
// dependent call.
func FromError(err error) Result {
	if err == nil {
		return OK
	}
	var re *resultError
	if errors.As(err, &re) {
		return re.res
	}
	return Result{
		Code:    CodeDependentCallFailed,
		Message: err.Error(),
	}
}
