package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"qrguard-lab/internal/domain/models"
)

// IsPaymentLink reports whether s starts with the payment deep-link prefix.
// The match is case-sensitive.
func IsPaymentLink(s, prefix string) bool {
	return prefix != "" && strings.HasPrefix(s, prefix)
}

// ParsePayload splits a payment deep link into display fields.
// Everything after the first '?' is split on '&'; a parameter is kept only
// when it contains exactly one '='. A repeated key keeps the position of its
// first appearance and takes the last value. Input without '?' yields no fields.
func ParsePayload(s string) models.PaymentPayload {
	payload := models.PaymentPayload{
		Raw:    s,
		Fields: []models.PayloadField{},
	}

	_, query, found := strings.Cut(s, "?")
	if !found {
		return payload
	}

	positions := make(map[string]int)
	for _, param := range strings.Split(query, "&") {
		if strings.Count(param, "=") != 1 {
			continue
		}
		key, value, _ := strings.Cut(param, "=")
		field := payloadField(key, value)

		if i, seen := positions[key]; seen {
			payload.Fields[i] = field
			continue
		}
		positions[key] = len(payload.Fields)
		payload.Fields = append(payload.Fields, field)
	}

	if amount, ok := payload.Get(models.PaymentKeyAmount); ok {
		if d, err := decimal.NewFromString(amount); err == nil {
			payload.Amount = &d
		}
	}

	return payload
}

// payloadField labels known keys. Names and notes get "%20" replaced by a
// space; no other escape is decoded.
func payloadField(key, value string) models.PayloadField {
	label, known := models.PaymentKeyLabels[key]
	if !known {
		return models.PayloadField{Key: key, Label: key, Value: value}
	}

	switch key {
	case models.PaymentKeyPayeeName, models.PaymentKeyNote:
		value = strings.ReplaceAll(value, "%20", " ")
	}

	return models.PayloadField{Key: key, Label: label, Value: value}
}
