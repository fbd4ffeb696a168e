package checkout

import "strconv"

// MsgNegativeTotal is printed instead of a price when the total is below zero.
const MsgNegativeTotal = "Error in calculation!"

// FormatAmount rounds a total to cents. Rounding works on the exact binary
// value, so 1033.155 (stored just below the half) renders as 1033.15.
func FormatAmount(total float64) string {
	return strconv.FormatFloat(total, 'f', 2, 64)
}

// FormatTotal renders the single receipt line.
func FormatTotal(total float64) string {
	return "The total price is: $" + FormatAmount(total)
}

// Message converts a quote outcome into the line shown to the customer.
func Message(receipt Receipt, err error) string {
	switch {
	case IsNegativeTotal(err):
		return MsgNegativeTotal
	case err != nil:
		return "An error occurred during calculation: " + err.Error()
	default:
		return FormatTotal(receipt.Summary.Total)
	}
}
