package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"career-advisor/internal/logger"
	"career-advisor/internal/models"
)

// FallbackAdvice replaces the advice whenever the advisory call fails.
const FallbackAdvice = "Sorry, there was an error generating your career advice. Please try again."

// ErrInvalidInput is returned by Validate when a field breaks the form constraints.
var ErrInvalidInput = errors.New("invalid form input")

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range []string{"career", "years"} {
		if msg, ok := f[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), strings.Join(parts, "; "))
}

func (f FieldErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// FormSnapshot is a point-in-time copy of the form, ready for rendering.
type FormSnapshot struct {
	models.FormState
	Advice     string
	AdviceHTML template.HTML
	Loading    bool
	Errors     FieldErrors
}

// SubmitDisabled reports whether the submit control is disabled.
func (s FormSnapshot) SubmitDisabled() bool {
	return s.Loading
}

// CareerForm holds the transient state of one form instance. It lives for a
// single page request; nothing is kept after the response is written.
type CareerForm struct {
	advisor  Advisor
	renderer *MarkdownRenderer
	logger   *zap.Logger

	mu         sync.Mutex
	state      models.FormState
	advice     string
	adviceHTML template.HTML
	loading    bool
	errs       FieldErrors
}

func NewCareerForm(advisor Advisor, renderer *MarkdownRenderer, log *zap.Logger) *CareerForm {
	return &CareerForm{
		advisor:  advisor,
		renderer: renderer,
		logger:   logger.OrNop(log).With(zap.String("component", "career_form")),
	}
}

func (f *CareerForm) SetCareer(career string) {
	f.mu.Lock()
	f.state.Career = career
	f.mu.Unlock()
}

func (f *CareerForm) SetYears(years string) {
	f.mu.Lock()
	f.state.Years = years
	f.mu.Unlock()
}

func (f *CareerForm) State() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormSnapshot{
		FormState:  f.state,
		Advice:     f.advice,
		AdviceHTML: f.adviceHTML,
		Loading:    f.loading,
		Errors:     f.errs,
	}
}

// ValidateForm applies the input constraints of the form: career must be
// non-empty and years an integer of at least 1.
func ValidateForm(state models.FormState) (int, error) {
	errs := FieldErrors{}
	if state.Career == "" {
		errs["career"] = "Please enter your desired career."
	}
	years, err := strconv.Atoi(strings.TrimSpace(state.Years))
	switch {
	case strings.TrimSpace(state.Years) == "":
		errs["years"] = "Please enter the number of years."
	case err != nil:
		errs["years"] = "Years must be a whole number."
	case years < 1:
		errs["years"] = "Years must be at least 1."
	}
	if len(errs) > 0 {
		return 0, errs
	}
	return years, nil
}

// Submit runs one advisory call for the current input. Loading is true for
// the whole call. A failed call is logged and the advice is replaced by
// FallbackAdvice; the returned error is only the cause, for diagnostics.
// Invalid input returns FieldErrors without calling the endpoint.
func (f *CareerForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	years, err := ValidateForm(state)
	if err != nil {
		var fieldErrs FieldErrors
		errors.As(err, &fieldErrs)
		f.mu.Lock()
		f.errs = fieldErrs
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	f.errs = nil
	f.loading = true
	f.mu.Unlock()

	advice, callErr := f.advisor.GetAdvice(ctx, state.Career, years)
	if callErr != nil {
		f.logger.Error("error fetching career advice",
			zap.Int("years", years),
			zap.Error(callErr),
		)
		advice = FallbackAdvice
	}

	html, renderErr := f.renderer.Render(advice)
	if renderErr != nil {
		f.logger.Error("error rendering career advice", zap.Error(renderErr))
		html = template.HTML(template.HTMLEscapeString(advice))
	}

	f.mu.Lock()
	f.advice = advice
	f.adviceHTML = html
	f.loading = false
	f.mu.Unlock()

	return callErr
}
