package allocation

// Config defines allocation-related settings.
type Config struct {
	// OperationTimeoutSeconds bounds one service operation, bulk passes
	// included. Zero disables the timeout.
	OperationTimeoutSeconds int `json:"operation_timeout_seconds"`
}
