package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentPayloadHeader heads the rendered breakdown of a payment deep link
const PaymentPayloadHeader = "Payment link detected"

// Known payment deep-link parameter keys
const (
	PaymentKeyPayeeAddress = "pa"
	PaymentKeyPayeeName    = "pn"
	PaymentKeyAmount       = "am"
	PaymentKeyNote         = "tn"
)

// PaymentKeyLabels maps known keys to their display labels
var PaymentKeyLabels = map[string]string{
	PaymentKeyPayeeAddress: "VPA",
	PaymentKeyPayeeName:    "Name",
	PaymentKeyAmount:       "Amount",
	PaymentKeyNote:         "Note",
}

// PayloadField is one recognised key/value pair of a payment deep link
type PayloadField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Line renders the field as "label: value"
func (f PayloadField) Line() string {
	return f.Label + ": " + f.Value
}

// PaymentPayload is the ordered breakdown of a payment deep link.
// Fields keep first-appearance order; a repeated key keeps its slot and takes the last value.
type PaymentPayload struct {
	Raw    string           `json:"raw"`
	Fields []PayloadField   `json:"fields"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Get returns the value for key
func (p PaymentPayload) Get(key string) (string, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Lines returns every field rendered for display
func (p PaymentPayload) Lines() []string {
	lines := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		lines = append(lines, f.Line())
	}
	return lines
}

// String renders the header followed by one line per field
func (p PaymentPayload) String() string {
	var b strings.Builder
	b.WriteString(PaymentPayloadHeader)
	b.WriteString(":\n\n")
	for _, line := range p.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
