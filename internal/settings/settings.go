package settings

import "strings"

// PaymentMethod pairs a canonical label with the tax rate it attracts.
// TaxRateBps is in basis points, so 750 means 7.5%.
type PaymentMethod struct {
	ID         string
	Label      string
	TaxRateBps int64
}

// Settings is the business profile plus the tax-by-payment-method table the
// pricing engine reads.
type Settings struct {
	BusinessName    string
	BusinessPhone   string
	BusinessAddress string
	Methods         []PaymentMethod
}

// Canonical labels for payment methods. Persisted records written by older
// clients carry free-form labels, which NormalizeMethodLabel folds back onto
// these.
const (
	LabelCash     = "Cash"
	LabelCardPOS  = "Card/POS"
	LabelTransfer = "Online Transfer"

	// LabelOther marks an invoice completed deliberately as unpaid, as
	// opposed to an abandoned draft where the method is absent entirely.
	LabelOther = "Other"
)

// NormalizeMethodLabel maps a free-form payment method string onto a canonical
// label using case-insensitive substring matching. Returns "" when nothing
// matches.
func NormalizeMethodLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case s == "":
		return ""
	case strings.Contains(s, "cash"):
		return LabelCash
	case strings.Contains(s, "card"), strings.Contains(s, "pos"):
		return LabelCardPOS
	case strings.Contains(s, "online"), strings.Contains(s, "transfer"):
		return LabelTransfer
	}

	return ""
}

// MethodByID looks up a configured payment method.
func (s *Settings) MethodByID(id string) (PaymentMethod, bool) {
	for _, m := range s.Methods {
		if m.ID == id {
			return m, true
		}
	}

	return PaymentMethod{}, false
}

// MethodByLabel finds the configured method whose canonical label matches the
// normalized form of raw.
func (s *Settings) MethodByLabel(raw string) (PaymentMethod, bool) {
	label := NormalizeMethodLabel(raw)
	if label == "" {
		return PaymentMethod{}, false
	}

	for _, m := range s.Methods {
		if m.Label == label {
			return m, true
		}
	}

	return PaymentMethod{}, false
}

// TaxRateBpsFor returns the tax rate for a payment method id, zero when the
// method is unknown or none is selected yet.
func (s *Settings) TaxRateBpsFor(methodID string) int64 {
	m, ok := s.MethodByID(methodID)
	if !ok {
		return 0
	}

	return m.TaxRateBps
}
