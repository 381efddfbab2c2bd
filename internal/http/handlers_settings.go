package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/prefs"
)

type settingsResponse struct {
	State    string        `json:"state"`
	Settings core.Settings `json:"settings"`
}

type onboardingRequest struct {
	Name      string        `json:"name"`
	FirstName string        `json:"firstName"`
	Language  core.Language `json:"language"`
	Currency  core.Currency `json:"currency"`
}

// settingsPatchRequest mirrors core.SettingsPatch. Absent fields are left
// alone; revenueTypes replaces the list when present.
type settingsPatchRequest struct {
	Name          *string          `json:"name"`
	FirstName     *string          `json:"firstName"`
	Region        *string          `json:"region"`
	Nationality   *string          `json:"nationality"`
	Language      *core.Language   `json:"language"`
	Currency      *core.Currency   `json:"currency"`
	Theme         *core.Theme      `json:"theme"`
	PrincipalFund *decimal.Decimal `json:"principalFund"`
	RevenueTypes  []string         `json:"revenueTypes"`
}

func (s *Server) settingsBody() settingsResponse {
	return settingsResponse{
		State:    s.app.Prefs.State().String(),
		Settings: s.app.Prefs.Settings(),
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.settingsBody()).Write(w, r)
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w, r)
		return
	}
	s.app.Prefs.Update(patch)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Settings updated", log.FieldOperation, log.OpUpdate)
	NewResponse().JSON(s.settingsBody()).Write(w, r)
}

func (req settingsPatchRequest) toPatch() (core.SettingsPatch, error) {
	p := core.SettingsPatch{
		Region:        req.Region,
		Nationality:   req.Nationality,
		Theme:         req.Theme,
		PrincipalFund: req.PrincipalFund,
	}
	if req.Name != nil {
		v := sanitizeInput(*req.Name)
		p.Name = &v
	}
	if req.FirstName != nil {
		v := sanitizeInput(*req.FirstName)
		p.FirstName = &v
	}
	if req.Language != nil {
		lang := req.Language.Normalize()
		if !lang.IsValid() {
			return p, errors.New("unsupported language")
		}
		p.Language = &lang
		region := core.RegionFor(lang)
		if p.Region == nil {
			p.Region = &region.Region
		}
		if p.Nationality == nil {
			p.Nationality = &region.Nationality
		}
	}
	if req.Currency != nil {
		cur := req.Currency.Normalize()
		if !cur.IsValid() {
			return p, errors.New("unsupported currency")
		}
		p.Currency = &cur
	}
	if req.Theme != nil && !req.Theme.IsValid() {
		return p, errors.New("unsupported theme")
	}
	if req.PrincipalFund != nil && req.PrincipalFund.IsNegative() {
		return p, errors.New("principal fund cannot be negative")
	}
	if req.RevenueTypes != nil {
		p.RevenueTypes = []string{}
		for _, t := range req.RevenueTypes {
			if t = sanitizeInput(t); t != "" {
				p.RevenueTypes = append(p.RevenueTypes, t)
			}
		}
	}
	return p, nil
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme := s.app.Prefs.ToggleTheme()
	NewResponse().JSON(map[string]core.Theme{"theme": theme}).Write(w, r)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	profile := core.Profile{
		Name:      sanitizeInput(req.Name),
		FirstName: sanitizeInput(req.FirstName),
		Language:  req.Language.Normalize(),
		Currency:  req.Currency.Normalize(),
	}
	if profile.Language == "" {
		profile.Language = core.LanguageFrench
	}
	if profile.Currency == "" {
		profile.Currency = core.CurrencyAriary
	}
	switch {
	case profile.Name == "" || profile.FirstName == "":
		UnprocessableEntityError("name and firstName are required").Write(w, r)
		return
	case !profile.Language.IsValid():
		UnprocessableEntityError("unsupported language").Write(w, r)
		return
	case !profile.Currency.IsValid():
		UnprocessableEntityError("unsupported currency").Write(w, r)
		return
	}

	if _, err := s.app.Prefs.CompleteOnboarding(profile); err != nil {
		if errors.Is(err, prefs.ErrAlreadyOnboarded) {
			ConflictError(err.Error()).Write(w, r)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Onboarding failed", log.FieldError, err)
		InternalServerError("onboarding failed").Write(w, r)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(s.settingsBody()).Write(w, r)
}

func (s *Server) handleIncomeCategories(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string][]string{
		"categories": s.app.Prefs.Settings().IncomeCategories(),
	}).Write(w, r)
}
