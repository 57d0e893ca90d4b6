package service

import (
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"elysion/internal/dto"
	"elysion/internal/model"
	"elysion/internal/pass"
	"elysion/internal/site"
)

const (
	PageTemplate = "index.tmpl"

	noticeHeld       = "Details saved. Please complete the UPI payment using the fee shown, then confirm payment to generate your entry QR."
	noticeConfirmed  = "Payment marked complete. Your entry QR is ready; keep it handy at the registration desk."
	noticeNoPending  = "Submit the registration form before confirming payment."
	noticeFixFields  = "Please correct the highlighted fields."
	noticeBadRequest = "Could not read the form, please try again."
)

// pageData is everything index.tmpl renders.
type pageData struct {
	Content   *site.Content
	Countdown site.TimeLeft
	Desk      string
	Form      *dto.RegistrationForm
	Errors    map[string]string
	Quote     model.FeeQuote
	State     string
	PassID    string
	QRURL     string
	Notice    string
}

func (s *service) page(token string, d pass.Desk, form *dto.RegistrationForm) pageData {
	if form == nil {
		f := dto.NewRegistrationForm()
		if d.Pass != nil {
			f = dto.FormFromSubmission(d.Pass.Submission)
		}
		form = &f
	}

	data := pageData{
		Content:   s.content,
		Countdown: site.Countdown(s.content.Event.Starts, s.now()),
		Desk:      token,
		Form:      form,
		Errors:    map[string]string{},
		Quote:     form.Quote(),
		State:     d.State.String(),
	}
	if d.Pass != nil {
		data.PassID = d.Pass.ID
	}
	if d.State == pass.StateConfirmed {
		data.QRURL = qrURL(token)
	}
	return data
}

// Index serves the page on a brand new desk. Reloading starts over.
func (s *service) Index(ctx *ginext.Context) {
	ctx.HTML(http.StatusOK, PageTemplate, s.page(pass.NewToken(), pass.Desk{}, nil))
}

func (s *service) Register(ctx *ginext.Context) {
	token := formToken(ctx)

	var form dto.RegistrationForm
	if err := ctx.ShouldBind(&form); err != nil {
		s.log.Error().Err(err).Msg("failed to parse registration form")
		data := s.page(token, s.store.Desk(token), &form)
		data.Notice = noticeBadRequest
		ctx.HTML(http.StatusBadRequest, PageTemplate, data)
		return
	}

	d, errs, err := s.submit(ctx.Request.Context(), token, &form)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hold registration")
		ctx.String(http.StatusInternalServerError, dto.InternalError)
		return
	}

	data := s.page(token, d, &form)
	if len(errs) > 0 {
		data.Errors = errs
		data.Notice = noticeFixFields
		ctx.HTML(http.StatusBadRequest, PageTemplate, data)
		return
	}
	data.Notice = noticeHeld
	ctx.HTML(http.StatusOK, PageTemplate, data)
}

func (s *service) ConfirmPayment(ctx *ginext.Context) {
	token := formToken(ctx)

	d, err := s.confirm(token)
	if errors.Is(err, pass.ErrNothingPending) {
		data := s.page(token, d, nil)
		data.Notice = noticeNoPending
		ctx.HTML(http.StatusConflict, PageTemplate, data)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to confirm payment")
		ctx.String(http.StatusInternalServerError, dto.InternalError)
		return
	}

	data := s.page(token, d, nil)
	data.Notice = noticeConfirmed
	ctx.HTML(http.StatusOK, PageTemplate, data)
}

// formToken reads the desk from the hidden form field. A missing or mangled
// token gets a fresh, empty desk.
func formToken(ctx *ginext.Context) string {
	token, err := pass.ParseToken(ctx.PostForm("desk"))
	if err != nil {
		return pass.NewToken()
	}
	return token
}
