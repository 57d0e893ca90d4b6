package dto

import (
	"context"
	"strings"

	"elysion/internal/fee"
	"elysion/internal/model"
	"elysion/pkg/validator"
)

// RegistrationForm is the flat shape posted by the page and the JSON API.
// Partner fields are only looked at for couple tickets.
type RegistrationForm struct {
	Name               string   `form:"name" json:"name" validate:"required"`
	College            string   `form:"college" json:"college" validate:"required"`
	Department         string   `form:"department" json:"department" validate:"required"`
	Year               string   `form:"year" json:"year" validate:"required"`
	Email              string   `form:"email" json:"email" validate:"required,email"`
	Phone              string   `form:"phone" json:"phone" validate:"required,min=10,max=15"`
	IsIeeeMember       string   `form:"isIeeeMember" json:"isIeeeMember" validate:"required,oneof=yes no"`
	MemID              string   `form:"memId" json:"memId"`
	FoodPreference     string   `form:"foodPreference" json:"foodPreference" validate:"required,oneof=veg nonveg"`
	WorkshopPreference []string `form:"workshopPreference" json:"workshopPreference" validate:"required,min=1,max=3,unique,dive,workshop"`
	TicketType         string   `form:"ticketType" json:"ticketType" validate:"required,oneof=single couple"`
	Accommodation      string   `form:"accommodation" json:"accommodation" validate:"required,oneof=yes no"`

	PartnerForm `validate:"-"`
}

type PartnerForm struct {
	PartnerName          string `form:"partnerName" json:"partnerName" validate:"required"`
	PartnerEmail         string `form:"partnerEmail" json:"partnerEmail" validate:"required,email"`
	PartnerPhone         string `form:"partnerPhone" json:"partnerPhone" validate:"required,min=10"`
	PartnerCollege       string `form:"partnerCollege" json:"partnerCollege" validate:"required"`
	PartnerDepartment    string `form:"partnerDepartment" json:"partnerDepartment" validate:"required"`
	PartnerYear          string `form:"partnerYear" json:"partnerYear" validate:"required"`
	PartnerFood          string `form:"partnerFood" json:"partnerFood" validate:"required,oneof=veg nonveg"`
	PartnerAccommodation string `form:"partnerAccommodation" json:"partnerAccommodation" validate:"required,oneof=yes no"`
	PartnerIsIeeeMember  string `form:"partnerIsIeeeMember" json:"partnerIsIeeeMember" validate:"required,oneof=yes no"`
	PartnerMemID         string `form:"partnerMemId" json:"partnerMemId"`
}

var registrationMessages = validator.Messages{
	"name":               "Name is required",
	"college":            "College is required",
	"department":         "Department is required",
	"year":               "Year is required",
	"email":              "Enter a valid email",
	"phone":              "Enter a valid phone number",
	"isIeeeMember":       "Please select IEEE membership",
	"foodPreference":     "Please choose your food preference",
	"workshopPreference": "Please choose at least one workshop",
	"ticketType":         "Please choose entry type",
	"accommodation":      "Please select accommodation preference",

	"workshopPreference.max":      "You can choose up to three workshops",
	"workshopPreference.unique":   "Choose each workshop only once",
	"workshopPreference.workshop": "Choose workshops from the list",

	"partnerName":          "Partner name is required for couple entry",
	"partnerEmail":         "Valid partner email is required",
	"partnerPhone":         "Valid partner phone is required",
	"partnerCollege":       "Partner college is required",
	"partnerDepartment":    "Partner department is required",
	"partnerYear":          "Partner year is required",
	"partnerFood":          "Partner food preference is required",
	"partnerAccommodation": "Partner accommodation preference is required",
	"partnerIsIeeeMember":  "Partner IEEE membership status is required",
}

// NewRegistrationForm returns the form with the page's preselected choices.
func NewRegistrationForm() RegistrationForm {
	return RegistrationForm{
		IsIeeeMember:   "no",
		FoodPreference: string(model.FoodVeg),
		TicketType:     string(model.TicketSingle),
		Accommodation:  "no",
		PartnerForm: PartnerForm{
			PartnerFood:          string(model.FoodVeg),
			PartnerAccommodation: "no",
			PartnerIsIeeeMember:  "no",
		},
	}
}

func (f *RegistrationForm) trim() {
	for _, s := range []*string{
		&f.Name, &f.College, &f.Department, &f.Year, &f.Email, &f.Phone, &f.MemID,
		&f.PartnerName, &f.PartnerCollege, &f.PartnerDepartment, &f.PartnerYear,
		&f.PartnerEmail, &f.PartnerPhone, &f.PartnerMemID,
	} {
		*s = strings.TrimSpace(*s)
	}
}

func (f *RegistrationForm) Couple() bool {
	return f.TicketType == string(model.TicketCouple)
}

// Check returns field name to message for every invalid field, or an empty
// map. Partner fields are validated only for couple tickets, so stale values
// left over from a couple selection never fail a single ticket.
func (f *RegistrationForm) Check(ctx context.Context) map[string]string {
	f.trim()
	errs := validator.Fields(ctx, f, registrationMessages)
	if f.Couple() {
		for field, msg := range validator.Fields(ctx, f.PartnerForm, registrationMessages) {
			errs[field] = msg
		}
	}
	return errs
}

// Quote prices the current selection. It works on unvalidated input so the
// page can show a fee while the form is still being filled in.
func (f *RegistrationForm) Quote() model.FeeQuote {
	return fee.Quote(model.TicketType(f.TicketType), f.IsIeeeMember == "yes", f.PartnerIsIeeeMember == "yes")
}

// Submission converts a form that passed Check.
func (f *RegistrationForm) Submission() model.Submission {
	workshops := make([]model.Workshop, 0, len(f.WorkshopPreference))
	for _, w := range f.WorkshopPreference {
		workshops = append(workshops, model.Workshop(w))
	}

	sub := model.Submission{
		Registrant: model.Person{
			Name:          f.Name,
			College:       f.College,
			Department:    f.Department,
			Year:          f.Year,
			Email:         f.Email,
			Phone:         f.Phone,
			IEEEMember:    f.IsIeeeMember == "yes",
			MembershipID:  f.MemID,
			Food:          model.Food(f.FoodPreference),
			Accommodation: f.Accommodation == "yes",
		},
		Workshops: workshops,
		Ticket:    model.SingleTicket{},
	}
	if f.Couple() {
		sub.Ticket = model.CoupleTicket{Partner: model.Person{
			Name:          f.PartnerName,
			College:       f.PartnerCollege,
			Department:    f.PartnerDepartment,
			Year:          f.PartnerYear,
			Email:         f.PartnerEmail,
			Phone:         f.PartnerPhone,
			IEEEMember:    f.PartnerIsIeeeMember == "yes",
			MembershipID:  f.PartnerMemID,
			Food:          model.Food(f.PartnerFood),
			Accommodation: f.PartnerAccommodation == "yes",
		}}
	}
	return sub
}

// FormFromSubmission refills the page form from a held submission.
func FormFromSubmission(s model.Submission) RegistrationForm {
	f := NewRegistrationForm()
	r := s.Registrant
	f.Name, f.College, f.Department, f.Year = r.Name, r.College, r.Department, r.Year
	f.Email, f.Phone, f.MemID = r.Email, r.Phone, r.MembershipID
	f.IsIeeeMember = YesNo(r.IEEEMember)
	f.FoodPreference = string(r.Food)
	f.Accommodation = YesNo(r.Accommodation)
	f.TicketType = string(s.Ticket.Type())
	for _, w := range s.Workshops {
		f.WorkshopPreference = append(f.WorkshopPreference, string(w))
	}

	if p, ok := s.Partner(); ok {
		f.PartnerForm = PartnerForm{
			PartnerName:          p.Name,
			PartnerEmail:         p.Email,
			PartnerPhone:         p.Phone,
			PartnerCollege:       p.College,
			PartnerDepartment:    p.Department,
			PartnerYear:          p.Year,
			PartnerFood:          string(p.Food),
			PartnerAccommodation: YesNo(p.Accommodation),
			PartnerIsIeeeMember:  YesNo(p.IEEEMember),
			PartnerMemID:         p.MembershipID,
		}
	}
	return f
}

// HasWorkshop reports whether the form currently selects w.
func (f *RegistrationForm) HasWorkshop(w string) bool {
	for _, picked := range f.WorkshopPreference {
		if picked == w {
			return true
		}
	}
	return false
}

func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (q QuoteRequest) Quote() model.FeeQuote {
	return fee.Quote(model.TicketType(q.TicketType), q.IsIeeeMember == "yes", q.PartnerIsIeeeMember == "yes")
}
