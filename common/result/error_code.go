package result

// ErrorCode classifies why an operation was rejected
type ErrorCode int

const (
	CodeOK ErrorCode = 0

	CodeGenericError ErrorCode = 10000

	// Decoder length or format violations
	CodeMalformedInput ErrorCode = 10001
	// Commitment digest or vote type mismatch
	CodeInvalidCommitment ErrorCode = 10002
	// Deposit id interval exhausted
	CodeIntervalExhausted ErrorCode = 10003
	// Caller lacks the required role or registration
	CodeUnauthorized ErrorCode = 10004
	// Token is not registered with the directory
	CodeTokenNotSupported ErrorCode = 10005
	// An external transfer or verification call reported failure
	CodeDependentCallFailed ErrorCode = 10006

	CodeInvalidInput            ErrorCode = 10007
	CodeReentrantCall           ErrorCode = 10008
	CodeNoChange                ErrorCode = 10009
	CodeCustodyLocked           ErrorCode = 10010
	CodeCheckpointDiscontinuous ErrorCode = 10011
	CodeUnknownTx               ErrorCode = 10012
	CodeInsufficientFunds       ErrorCode = 10013
	CodeInvalidSequence         ErrorCode = 10014
)
