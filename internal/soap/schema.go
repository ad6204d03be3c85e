// Package soap implements the small subset of SOAP 1.1 the order service
// speaks: document/literal envelopes with one operation element per body,
// faults, and a WSDL document generated from the operation schemas.
package soap

const (
	// EnvelopeNS is the SOAP 1.1 envelope namespace.
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	// WSDLNS is the WSDL 1.1 namespace.
	WSDLNS = "http://schemas.xmlsoap.org/wsdl/"
	// WSDLSOAPNS is the WSDL SOAP 1.1 binding namespace.
	WSDLSOAPNS = "http://schemas.xmlsoap.org/wsdl/soap/"
	// XSDNS is the XML Schema namespace.
	XSDNS = "http://www.w3.org/2001/XMLSchema"
	// HTTPTransport identifies the SOAP-over-HTTP transport in WSDL bindings.
	HTTPTransport = "http://schemas.xmlsoap.org/soap/http"
)

// XSDType is the schema type of an argument or return field.
type XSDType string

const (
	TypeString  XSDType = "xsd:string"
	TypeInt     XSDType = "xsd:int"
	TypeBoolean XSDType = "xsd:boolean"
)

// Field is a named, typed element inside an operation request or response.
type Field struct {
	Name string
	Type XSDType
}

// Operation describes one remote operation: its argument and return
// elements, in document order.
type Operation struct {
	Name    string
	Doc     string
	Args    []Field
	Returns []Field
}

// ResponseName is the element name wrapping the operation's return fields.
func (o Operation) ResponseName() string {
	return o.Name + "Response"
}

// Service is everything needed to describe the endpoint in a WSDL document.
type Service struct {
	Name       string
	Namespace  string
	Prefix     string
	Location   string
	Operations []Operation
}

// SOAPAction returns the action URI advertised for op.
func (s Service) SOAPAction(op string) string {
	return s.Namespace + "/" + op
}

// Value is a single encoded field: the element name and its text content.
type Value struct {
	Name string
	Data string
}
