package fee

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"elysion/internal/model"
)

// Per-head prices in rupees.
const (
	SingleMember    = 550
	SingleNonMember = 600
	CoupleMember    = 500
	CoupleNonMember = 550
)

// Quote prices a ticket. For couples one member among the two is enough for
// the discounted rate; for singles the partner flag is ignored.
func Quote(ticket model.TicketType, member, partnerMember bool) model.FeeQuote {
	if ticket != model.TicketCouple {
		if member {
			return model.FeeQuote{Label: "IEEE member single", PerHead: SingleMember, Total: SingleMember}
		}
		return model.FeeQuote{Label: "Non-IEEE single", PerHead: SingleNonMember, Total: SingleNonMember}
	}

	if member || partnerMember {
		return model.FeeQuote{Label: "Couple (at least one IEEE)", PerHead: CoupleMember, Total: 2 * CoupleMember}
	}
	return model.FeeQuote{Label: "Couple (both non-IEEE)", PerHead: CoupleNonMember, Total: 2 * CoupleNonMember}
}

func ForSubmission(s model.Submission) model.FeeQuote {
	partner, _ := s.Partner()
	return Quote(s.Ticket.Type(), s.Registrant.IEEEMember, partner.IEEEMember)
}

var printer = message.NewPrinter(language.English)

// Rupees formats an amount with digit grouping, e.g. ₹1,100.
func Rupees(amount int) string {
	return printer.Sprintf("₹%d", amount)
}
