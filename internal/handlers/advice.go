package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"career-advisor/internal/logger"
	"career-advisor/internal/models"
	"career-advisor/internal/services"
)

//go:embed templates/index.html
var templateFS embed.FS

const (
	pageTitle       = "Career Advice Generator"
	pageDescription = "Enter your desired career and timeframe to get personalized advice"

	maxBodyBytes = 64 << 10
)

type pageData struct {
	Title       string
	Description string
	Form        services.FormSnapshot
}

type AdviceHandler struct {
	advisor  services.Advisor
	renderer *services.MarkdownRenderer
	logger   *zap.Logger
	page     *template.Template
}

func NewAdviceHandler(advisor services.Advisor, renderer *services.MarkdownRenderer, log *zap.Logger) (*AdviceHandler, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &AdviceHandler{
		advisor:  advisor,
		renderer: renderer,
		logger:   logger.OrNop(log),
		page:     page,
	}, nil
}

func (h *AdviceHandler) newForm() *services.CareerForm {
	return services.NewCareerForm(h.advisor, h.renderer, h.logger)
}

// Page renders the empty form.
func (h *AdviceHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, h.newForm().State())
}

// Submit handles the form post. The page is re-rendered with the submitted
// values; an advisory failure still renders 200 with the fallback advice.
func (h *AdviceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := h.newForm()
	form.SetCareer(r.PostFormValue("career"))
	form.SetYears(r.PostFormValue("years"))

	status := http.StatusOK
	if err := form.Submit(r.Context()); errors.Is(err, services.ErrInvalidInput) {
		status = http.StatusBadRequest
	}

	h.renderPage(w, r, status, form.State())
}

// Advise is the JSON flavour of Submit.
func (h *AdviceHandler) Advise(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	form := h.newForm()
	form.SetCareer(req.Career)
	form.SetYears(string(req.Years))

	err := form.Submit(r.Context())
	var fieldErrs services.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid input", fieldErrs, r))
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", services.FallbackAdvice, r))
		return
	}

	state := form.State()
	writeJSON(w, http.StatusOK, models.AdviceResponse{
		Advice: state.Advice,
		HTML:   string(state.AdviceHTML),
	})
}

func (h *AdviceHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, form services.FormSnapshot) {
	var buf bytes.Buffer
	data := pageData{Title: pageTitle, Description: pageDescription, Form: form}
	if err := h.page.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
