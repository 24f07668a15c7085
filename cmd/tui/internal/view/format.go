package view

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dbTimeout = 5 * time.Second

var moneyPrinter = message.NewPrinter(language.EuropeanPortuguese)

// FormatMoney renders an amount stored in cents, grouped the way the rest of
// the paperwork in the workshop is ("1.234,56 €").
func FormatMoney(cents int64) string {
	return moneyPrinter.Sprintf("%.2f €", float64(cents)/100.0)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
