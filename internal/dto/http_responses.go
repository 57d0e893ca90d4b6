package dto

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"elysion/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	NothingPending = "NOTHING_PENDING"
	PassNotFound   = "PASS_NOT_FOUND"
)

type QuoteRequest struct {
	TicketType          string `json:"ticketType" validate:"required,oneof=single couple"`
	IsIeeeMember        string `json:"isIeeeMember" validate:"omitempty,oneof=yes no"`
	PartnerIsIeeeMember string `json:"partnerIsIeeeMember" validate:"omitempty,oneof=yes no"`
}

// DeskResponse describes one registration desk. Payload is only filled once
// payment has been self-confirmed; Verified is always false because nobody
// checks the payment.
type DeskResponse struct {
	Desk     string          `json:"desk"`
	State    string          `json:"state"`
	PassID   string          `json:"passId,omitempty"`
	Quote    *model.FeeQuote `json:"quote,omitempty"`
	Payload  string          `json:"payload,omitempty"`
	QRURL    string          `json:"qrUrl,omitempty"`
	IssuedAt *time.Time      `json:"issuedAt,omitempty"`
	Verified bool            `json:"verified"`
	Reminder string          `json:"reminder,omitempty"`
}

// PassIssuedMessage is published when a desk is confirmed so organisers can
// mail the pass.
type PassIssuedMessage struct {
	PassID     string    `json:"pass_id"`
	Name       string    `json:"name"`
	Recipients []string  `json:"recipients"`
	Payload    string    `json:"payload"`
	Total      int       `json:"total"`
	IssuedAt   time.Time `json:"issued_at"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code   string            `json:"code"`
	Desc   string            `json:"desc"`
	Fields map[string]string `json:"fields,omitempty"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(http.StatusBadRequest, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldIncorrect, "Field '"+fieldName+"' is incorrect")
}

func ValidationError(c *ginext.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, Response{
		Status: "error",
		Error: &Error{
			Code:   FieldIncorrect,
			Desc:   "Some fields are missing or invalid",
			Fields: fields,
		},
	})
}

func NothingPendingError(c *ginext.Context) {
	c.JSON(http.StatusConflict, Response{
		Status: "error",
		Error: &Error{
			Code: NothingPending,
			Desc: "Submit the registration form before confirming payment",
		},
	})
}

func PassNotFoundError(c *ginext.Context) {
	c.JSON(http.StatusNotFound, Response{
		Status: "error",
		Error: &Error{
			Code: PassNotFound,
			Desc: "No confirmed pass for this desk",
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}
