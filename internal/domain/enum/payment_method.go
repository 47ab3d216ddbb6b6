package enum

import (
	"encoding/json"
	"strings"
)

// PaymentMethod is how a sale was settled. Stored as its string value.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentEWallet PaymentMethod = "e-wallet"
)

var paymentLabels = map[PaymentMethod]string{
	PaymentCash:    "Cash",
	PaymentCard:    "Card",
	PaymentEWallet: "E-Wallet",
}

// ParsePaymentMethod accepts the stored value or its label, case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "cash":
		return PaymentCash, true
	case "card", "credit card", "debit card":
		return PaymentCard, true
	case "e-wallet", "ewallet", "gcash", "maya":
		return PaymentEWallet, true
	}
	return "", false
}

func (p PaymentMethod) Valid() bool {
	_, ok := paymentLabels[p]
	return ok
}

func (p PaymentMethod) IsCash() bool {
	return p == PaymentCash
}

// Label is the human readable name printed on receipts.
func (p PaymentMethod) Label() string {
	if l, ok := paymentLabels[p]; ok {
		return l
	}
	return string(p)
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if parsed, ok := ParsePaymentMethod(str); ok {
		*p = parsed
		return nil
	}
	// Left as-is so validation can report the bad value.
	*p = PaymentMethod(str)
	return nil
}
