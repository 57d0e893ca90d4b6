package pass

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"elysion/internal/model"
)

const DefaultPrefix = "ELYSION26"

// Pass is a registration bundled with its identifier and the JSON payload
// that ends up in the entry QR.
type Pass struct {
	ID         string
	Submission model.Submission
	Payload    string
}

// payload keeps the field names the gate scanners already read.
type payload struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	College       string   `json:"college"`
	Department    string   `json:"department"`
	Year          string   `json:"year"`
	IEEEMember    string   `json:"ieeeMember"`
	MemID         string   `json:"memId"`
	Food          string   `json:"food"`
	Workshops     []string `json:"workshops"`
	TicketType    string   `json:"ticketType"`
	Accommodation string   `json:"accommodation"`

	PartnerName          string `json:"partnerName,omitempty"`
	PartnerEmail         string `json:"partnerEmail,omitempty"`
	PartnerPhone         string `json:"partnerPhone,omitempty"`
	PartnerCollege       string `json:"partnerCollege,omitempty"`
	PartnerDepartment    string `json:"partnerDepartment,omitempty"`
	PartnerYear          string `json:"partnerYear,omitempty"`
	PartnerFood          string `json:"partnerFood,omitempty"`
	PartnerAccommodation string `json:"partnerAccommodation,omitempty"`
	PartnerIsIeeeMember  string `json:"partnerIsIeeeMember,omitempty"`
	PartnerMemID         string `json:"partnerMemId,omitempty"`
}

// NewID returns PREFIX-<random UUID>. Random UUIDs keep two submissions made
// in the same instant apart.
func NewID(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-" + strings.ToUpper(uuid.NewString())
}

// Issue builds a pass with a fresh identifier.
func Issue(prefix string, sub model.Submission) (Pass, error) {
	return build(NewID(prefix), sub)
}

func build(id string, sub model.Submission) (Pass, error) {
	r := sub.Registrant
	p := payload{
		ID:            id,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		College:       r.College,
		Department:    r.Department,
		Year:          r.Year,
		IEEEMember:    yesNo(r.IEEEMember),
		MemID:         r.MembershipID,
		Food:          string(r.Food),
		Workshops:     make([]string, 0, len(sub.Workshops)),
		TicketType:    string(sub.Ticket.Type()),
		Accommodation: yesNo(r.Accommodation),
	}
	for _, w := range sub.Workshops {
		p.Workshops = append(p.Workshops, string(w))
	}
	if partner, ok := sub.Partner(); ok {
		p.PartnerName = partner.Name
		p.PartnerEmail = partner.Email
		p.PartnerPhone = partner.Phone
		p.PartnerCollege = partner.College
		p.PartnerDepartment = partner.Department
		p.PartnerYear = partner.Year
		p.PartnerFood = string(partner.Food)
		p.PartnerAccommodation = yesNo(partner.Accommodation)
		p.PartnerIsIeeeMember = yesNo(partner.IEEEMember)
		p.PartnerMemID = partner.MembershipID
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return Pass{}, fmt.Errorf("marshal pass payload: %w", err)
	}
	return Pass{ID: id, Submission: sub, Payload: string(raw)}, nil
}

// Recipients lists the addresses a confirmed pass is mailed to.
func (p Pass) Recipients() []string {
	out := []string{p.Submission.Registrant.Email}
	if partner, ok := p.Submission.Partner(); ok && partner.Email != "" && partner.Email != p.Submission.Registrant.Email {
		out = append(out, partner.Email)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
