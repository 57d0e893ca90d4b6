package model

type TicketType string

const (
	TicketSingle TicketType = "single"
	TicketCouple TicketType = "couple"
)

type Food string

const (
	FoodVeg    Food = "veg"
	FoodNonVeg Food = "nonveg"
)

type Workshop string

const (
	WorkshopEmbedded Workshop = "embedded"
	WorkshopGame     Workshop = "game"
	WorkshopFashion  Workshop = "fashion"
)

// Workshops is the fixed enumeration a registrant picks 1 to 3 entries from.
var Workshops = []Workshop{WorkshopEmbedded, WorkshopGame, WorkshopFashion}

const MaxWorkshops = 3

func (w Workshop) Valid() bool {
	for _, known := range Workshops {
		if w == known {
			return true
		}
	}
	return false
}

type Person struct {
	Name          string `json:"name"`
	College       string `json:"college"`
	Department    string `json:"department"`
	Year          string `json:"year"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	IEEEMember    bool   `json:"ieee_member"`
	MembershipID  string `json:"membership_id,omitempty"`
	Food          Food   `json:"food"`
	Accommodation bool   `json:"accommodation"`
}

// Ticket is either SingleTicket or CoupleTicket. Only the couple variant
// carries a partner.
type Ticket interface {
	Type() TicketType
	isTicket()
}

type SingleTicket struct{}

func (SingleTicket) Type() TicketType { return TicketSingle }
func (SingleTicket) isTicket()        {}

type CoupleTicket struct {
	Partner Person
}

func (CoupleTicket) Type() TicketType { return TicketCouple }
func (CoupleTicket) isTicket()        {}

type Submission struct {
	Registrant Person
	Workshops  []Workshop
	Ticket     Ticket
}

// Partner returns the couple partner, if any.
func (s Submission) Partner() (Person, bool) {
	if c, ok := s.Ticket.(CoupleTicket); ok {
		return c.Partner, true
	}
	return Person{}, false
}

type FeeQuote struct {
	Label   string `json:"label"`
	PerHead int    `json:"per_head"`
	Total   int    `json:"total"`
}
