package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// The generator relies on encoding/xml writing prefixed local names verbatim,
// which keeps the output in the conventional wsdl:/xsd:/soap: form.

type wsdlDefinitions struct {
	XMLName   xml.Name        `xml:"wsdl:definitions"`
	Name      string          `xml:"name,attr"`
	TargetNS  string          `xml:"targetNamespace,attr"`
	XmlnsTNS  string          `xml:"xmlns:tns,attr"`
	XmlnsWSDL string          `xml:"xmlns:wsdl,attr"`
	XmlnsSOAP string          `xml:"xmlns:soap,attr"`
	XmlnsXSD  string          `xml:"xmlns:xsd,attr"`
	Types     wsdlTypes       `xml:"wsdl:types"`
	Messages  []wsdlMessage   `xml:"wsdl:message"`
	PortType  wsdlPortType    `xml:"wsdl:portType"`
	Binding   wsdlBinding     `xml:"wsdl:binding"`
	Service   wsdlServiceElem `xml:"wsdl:service"`
}

type wsdlTypes struct {
	Schema xsdSchema `xml:"xsd:schema"`
}

type xsdSchema struct {
	TargetNS           string       `xml:"targetNamespace,attr"`
	ElementFormDefault string       `xml:"elementFormDefault,attr"`
	Elements           []xsdElement `xml:"xsd:element"`
}

type xsdElement struct {
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr,omitempty"`
	ComplexType *xsdComplexType `xml:"xsd:complexType,omitempty"`
}

type xsdComplexType struct {
	Sequence xsdSequence `xml:"xsd:sequence"`
}

type xsdSequence struct {
	Elements []xsdElement `xml:"xsd:element"`
}

type wsdlMessage struct {
	Name string   `xml:"name,attr"`
	Part wsdlPart `xml:"wsdl:part"`
}

type wsdlPart struct {
	Name    string `xml:"name,attr"`
	Element string `xml:"element,attr"`
}

type wsdlPortType struct {
	Name       string              `xml:"name,attr"`
	Operations []wsdlPortOperation `xml:"wsdl:operation"`
}

type wsdlPortOperation struct {
	Name   string     `xml:"name,attr"`
	Doc    string     `xml:"wsdl:documentation,omitempty"`
	Input  wsdlMsgRef `xml:"wsdl:input"`
	Output wsdlMsgRef `xml:"wsdl:output"`
}

type wsdlMsgRef struct {
	Message string `xml:"message,attr"`
}

type wsdlBinding struct {
	Name       string                 `xml:"name,attr"`
	Type       string                 `xml:"type,attr"`
	SOAP       soapBinding            `xml:"soap:binding"`
	Operations []wsdlBindingOperation `xml:"wsdl:operation"`
}

type soapBinding struct {
	Style     string `xml:"style,attr"`
	Transport string `xml:"transport,attr"`
}

type wsdlBindingOperation struct {
	Name   string        `xml:"name,attr"`
	SOAP   soapOperation `xml:"soap:operation"`
	Input  wsdlBodyUse   `xml:"wsdl:input"`
	Output wsdlBodyUse   `xml:"wsdl:output"`
}

type soapOperation struct {
	SOAPAction string `xml:"soapAction,attr"`
	Style      string `xml:"style,attr"`
}

type wsdlBodyUse struct {
	Body soapBody `xml:"soap:body"`
}

type soapBody struct {
	Use string `xml:"use,attr"`
}

type wsdlServiceElem struct {
	Name string   `xml:"name,attr"`
	Port wsdlPort `xml:"wsdl:port"`
}

type wsdlPort struct {
	Name    string      `xml:"name,attr"`
	Binding string      `xml:"binding,attr"`
	Address soapAddress `xml:"soap:address"`
}

type soapAddress struct {
	Location string `xml:"location,attr"`
}

// GenerateWSDL renders a document/literal WSDL 1.1 description of svc.
func GenerateWSDL(svc Service) ([]byte, error) {
	portTypeName := svc.Name + "PortType"
	bindingName := svc.Name + "Binding"

	defs := wsdlDefinitions{
		Name:      svc.Name,
		TargetNS:  svc.Namespace,
		XmlnsTNS:  svc.Namespace,
		XmlnsWSDL: WSDLNS,
		XmlnsSOAP: WSDLSOAPNS,
		XmlnsXSD:  XSDNS,
		Types: wsdlTypes{Schema: xsdSchema{
			TargetNS:           svc.Namespace,
			ElementFormDefault: "unqualified",
		}},
		PortType: wsdlPortType{Name: portTypeName},
		Binding: wsdlBinding{
			Name: bindingName,
			Type: "tns:" + portTypeName,
			SOAP: soapBinding{Style: "document", Transport: HTTPTransport},
		},
		Service: wsdlServiceElem{
			Name: svc.Name,
			Port: wsdlPort{
				Name:    svc.Name + "Port",
				Binding: "tns:" + bindingName,
				Address: soapAddress{Location: svc.Location},
			},
		},
	}

	for _, op := range svc.Operations {
		schema := &defs.Types.Schema
		schema.Elements = append(schema.Elements,
			wrapperElement(op.Name, op.Args),
			wrapperElement(op.ResponseName(), op.Returns),
		)

		in, out := op.Name+"Input", op.Name+"Output"
		defs.Messages = append(defs.Messages,
			wsdlMessage{Name: in, Part: wsdlPart{Name: "parameters", Element: "tns:" + op.Name}},
			wsdlMessage{Name: out, Part: wsdlPart{Name: "parameters", Element: "tns:" + op.ResponseName()}},
		)

		defs.PortType.Operations = append(defs.PortType.Operations, wsdlPortOperation{
			Name:   op.Name,
			Doc:    op.Doc,
			Input:  wsdlMsgRef{Message: "tns:" + in},
			Output: wsdlMsgRef{Message: "tns:" + out},
		})

		defs.Binding.Operations = append(defs.Binding.Operations, wsdlBindingOperation{
			Name:   op.Name,
			SOAP:   soapOperation{SOAPAction: svc.SOAPAction(op.Name), Style: "document"},
			Input:  wsdlBodyUse{Body: soapBody{Use: "literal"}},
			Output: wsdlBodyUse{Body: soapBody{Use: "literal"}},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(defs); err != nil {
		return nil, fmt.Errorf("encode wsdl: %w", err)
	}
	return buf.Bytes(), nil
}

func wrapperElement(name string, fields []Field) xsdElement {
	seq := make([]xsdElement, 0, len(fields))
	for _, f := range fields {
		seq = append(seq, xsdElement{Name: f.Name, Type: string(f.Type)})
	}
	return xsdElement{
		Name:        name,
		ComplexType: &xsdComplexType{Sequence: xsdSequence{Elements: seq}},
	}
}

// Description is the subset of a WSDL document a client needs to call the
// service.
type Description struct {
	Name       string
	Namespace  string
	Location   string
	Operations []string
}

type wsdlDoc struct {
	XMLName  xml.Name `xml:"definitions"`
	Name     string   `xml:"name,attr"`
	TargetNS string   `xml:"targetNamespace,attr"`
	PortType struct {
		Operations []struct {
			Name string `xml:"name,attr"`
		} `xml:"operation"`
	} `xml:"portType"`
	Service struct {
		Port struct {
			Address struct {
				Location string `xml:"location,attr"`
			} `xml:"address"`
		} `xml:"port"`
	} `xml:"service"`
}

// ParseWSDL extracts the service name, namespace, endpoint location and
// operation names from a WSDL 1.1 document.
func ParseWSDL(data []byte) (*Description, error) {
	var doc wsdlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse wsdl: %w", err)
	}

	desc := &Description{
		Name:      doc.Name,
		Namespace: doc.TargetNS,
		Location:  doc.Service.Port.Address.Location,
	}
	for _, op := range doc.PortType.Operations {
		desc.Operations = append(desc.Operations, op.Name)
	}
	return desc, nil
}
