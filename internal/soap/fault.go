package soap

import "fmt"

// Fault codes used by the service.
const (
	FaultClient          = "soap:Client"
	FaultServer          = "soap:Server"
	FaultVersionMismatch = "soap:VersionMismatch"
)

// Fault is a SOAP 1.1 fault. It doubles as the error returned by the client
// when the server answers with a fault body.
type Fault struct {
	Code   string
	String string
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("soap fault %s: %s (%s)", f.Code, f.String, f.Detail)
	}
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// ClientFault builds a fault blaming the request.
func ClientFault(format string, args ...any) *Fault {
	return &Fault{Code: FaultClient, String: fmt.Sprintf(format, args...)}
}

// ServerFault builds a fault blaming the service.
func ServerFault(format string, args ...any) *Fault {
	return &Fault{Code: FaultServer, String: fmt.Sprintf(format, args...)}
}
