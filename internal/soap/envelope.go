package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedEnvelope is returned when the payload is not a SOAP envelope
	// carrying exactly one operation element in its body.
	ErrMalformedEnvelope = errors.New("malformed soap envelope")
	// ErrVersionMismatch is returned when the envelope uses a namespace other
	// than SOAP 1.1.
	ErrVersionMismatch = errors.New("unsupported soap envelope namespace")
)

// Call is a decoded operation invocation.
type Call struct {
	Name      string
	Namespace string
	Params    []Value
}

// Param looks an argument up by element name, falling back to its position
// when no child carries that name.
func (c *Call) Param(name string, pos int) (string, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Data, true
		}
	}
	if pos >= 0 && pos < len(c.Params) {
		return c.Params[pos].Data, true
	}
	return "", false
}

type envelopeXML struct {
	XMLName xml.Name
	Body    *bodyXML `xml:"Body"`
}

type bodyXML struct {
	Elements []elementXML `xml:",any"`
}

type elementXML struct {
	XMLName  xml.Name
	Children []elementXML `xml:",any"`
	Text     string       `xml:",chardata"`
}

func (e elementXML) values() []Value {
	out := make([]Value, 0, len(e.Children))
	for _, c := range e.Children {
		out = append(out, Value{Name: c.XMLName.Local, Data: c.Text})
	}
	return out
}

func (e elementXML) child(local string) (elementXML, bool) {
	for _, c := range e.Children {
		if c.XMLName.Local == local {
			return c, true
		}
	}
	return elementXML{}, false
}

// decodeBody parses an envelope and returns the first element of its body.
func decodeBody(r io.Reader) (elementXML, error) {
	var env envelopeXML
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return elementXML{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.XMLName.Local != "Envelope" {
		return elementXML{}, fmt.Errorf("%w: root element is %q", ErrMalformedEnvelope, env.XMLName.Local)
	}
	if env.XMLName.Space != EnvelopeNS {
		return elementXML{}, fmt.Errorf("%w: %q", ErrVersionMismatch, env.XMLName.Space)
	}
	if env.Body == nil || len(env.Body.Elements) == 0 {
		return elementXML{}, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
	}
	return env.Body.Elements[0], nil
}

// DecodeCall parses a request envelope into the invoked operation and its
// arguments.
func DecodeCall(r io.Reader) (*Call, error) {
	el, err := decodeBody(r)
	if err != nil {
		return nil, err
	}
	return &Call{
		Name:      el.XMLName.Local,
		Namespace: el.XMLName.Space,
		Params:    el.values(),
	}, nil
}

// DecodeResponse parses the response envelope for operation op. A fault body
// is returned as a *Fault error.
func DecodeResponse(r io.Reader, op string) ([]Value, error) {
	el, err := decodeBody(r)
	if err != nil {
		return nil, err
	}

	if el.XMLName.Local == "Fault" {
		f := &Fault{}
		if c, ok := el.child("faultcode"); ok {
			f.Code = strings.TrimSpace(c.Text)
		}
		if c, ok := el.child("faultstring"); ok {
			f.String = strings.TrimSpace(c.Text)
		}
		if c, ok := el.child("detail"); ok {
			f.Detail = strings.TrimSpace(c.Text)
		}
		return nil, f
	}

	if want := op + "Response"; el.XMLName.Local != want {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrMalformedEnvelope, want, el.XMLName.Local)
	}
	return el.values(), nil
}

// MarshalCall encodes a request envelope invoking op in namespace ns.
func MarshalCall(ns, prefix, op string, params []Value) ([]byte, error) {
	return marshalEnvelope(ns, prefix, func(enc *xml.Encoder) error {
		return writeWrapped(enc, prefix+":"+op, params)
	})
}

// MarshalResponse encodes the response envelope for op.
func MarshalResponse(ns, prefix, op string, values []Value) ([]byte, error) {
	return marshalEnvelope(ns, prefix, func(enc *xml.Encoder) error {
		return writeWrapped(enc, prefix+":"+op+"Response", values)
	})
}

// MarshalFault encodes f as a fault envelope.
func MarshalFault(f *Fault) ([]byte, error) {
	return marshalEnvelope("", "", func(enc *xml.Encoder) error {
		start := xml.StartElement{Name: xml.Name{Local: "soap:Fault"}}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := writeText(enc, "faultcode", f.Code); err != nil {
			return err
		}
		if err := writeText(enc, "faultstring", f.String); err != nil {
			return err
		}
		if f.Detail != "" {
			if err := writeText(enc, "detail", f.Detail); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	})
}

// marshalEnvelope writes the XML declaration and the Envelope/Body pair,
// declaring the soap prefix and, when ns is set, the service prefix.
func marshalEnvelope(ns, prefix string, body func(*xml.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	attrs := []xml.Attr{{Name: xml.Name{Local: "xmlns:soap"}, Value: EnvelopeNS}}
	if ns != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns:" + prefix}, Value: ns})
	}

	enc := xml.NewEncoder(&buf)
	envStart := xml.StartElement{Name: xml.Name{Local: "soap:Envelope"}, Attr: attrs}
	bodyStart := xml.StartElement{Name: xml.Name{Local: "soap:Body"}}

	if err := enc.EncodeToken(envStart); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	if err := enc.EncodeToken(bodyStart); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := body(enc); err != nil {
		return nil, fmt.Errorf("encode body content: %w", err)
	}
	if err := enc.EncodeToken(bodyStart.End()); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := enc.EncodeToken(envStart.End()); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush envelope: %w", err)
	}
	return buf.Bytes(), nil
}

func writeWrapped(enc *xml.Encoder, name string, values []Value) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, v := range values {
		if err := writeText(enc, v.Name, v.Data); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeText(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
