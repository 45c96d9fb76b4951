package credsvc

import "fmt"

// RemoteError is returned when the credentialing service answers with a
// status code that is neither success nor a documented not-found case.
// It carries the status and body for diagnostics.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("credential service returned status %d: %s", e.StatusCode, e.Body)
}

// ProtocolError is returned when the service reports a transaction status
// value outside its documented lifecycle. It indicates a contract break
// with the remote service, not a normal failure.
type ProtocolError struct {
	Status string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected transaction status %q from credential service", e.Status)
}
