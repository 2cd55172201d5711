// Package mockapi is an in-process stand-in for the loan-origination API,
// used by integration tests and the demo CLI. It mirrors the real routes and
// their merge semantics: saves are sparse patches, progress is a named
// section map, and everything past create requires the bearer token it
// issued.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/app/metrics"
	"github.com/clearpathlending/intake/internal/backend"
	"github.com/clearpathlending/intake/pkg/logger"
)

var signingSecret = []byte("mockapi-signing-secret")

type record struct {
	app      backend.Application
	progress map[string]bool
	email    string
}

// Server holds the mock state. Safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	apps    map[string]*record
	emails  map[string]string // email -> application id
	log     *logger.Logger
	handler http.Handler
}

// NewServer builds the mock with empty state.
func NewServer(log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("mockapi")
	}
	s := &Server{
		apps:   make(map[string]*record),
		emails: make(map[string]string),
		log:    log,
	}

	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/urla/pre-application/verify-and-create", s.create).Methods(http.MethodPost)
	api.HandleFunc("/urla/applications/{id}", s.authed(s.get)).Methods(http.MethodGet)
	api.HandleFunc("/urla/applications/{id}/save", s.authed(s.save)).Methods(http.MethodPost)
	api.HandleFunc("/urla/applications/{id}/progress", s.authed(s.getProgress)).Methods(http.MethodGet)
	api.HandleFunc("/urla/applications/{id}/progress/section", s.authed(s.markSection)).Methods(http.MethodPatch)
	s.handler = metrics.InstrumentHandler(r)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// authed gates a handler on a parseable bearer token.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		if _, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return signingSecret, nil }); err != nil {
			writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid token: %w", err))
			return
		}
		next(w, r)
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req backend.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("name and email are required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[strings.ToLower(req.Email)]; exists {
		writeError(w, http.StatusConflict, errors.New("email already registered"))
		return
	}

	appID := uuid.NewString()
	borrowerID := uuid.NewString()
	userID := uuid.NewString()

	app := backend.Application{
		ID:          appID,
		LoanPurpose: req.LoanPurpose,
		Status:      string(deal.StatusDraft),
		BorrowerID:  borrowerID,
		Borrower: &backend.BorrowerPayload{
			ID:        borrowerID,
			FirstName: &req.FirstName,
			LastName:  &req.LastName,
			Email:     &req.Email,
			Phone:     &req.Phone,
		},
		CurrentFormStep: "borrower-info-2",
		CreatedDate:     time.Now().UTC().Format(time.RFC3339),
	}
	if req.LoanAmount != nil {
		app.LoanAmount = *req.LoanAmount
	}

	s.apps[appID] = &record{
		app:      app,
		progress: map[string]bool{"Section1a_PersonalInfo": false},
		email:    strings.ToLower(req.Email),
	}
	s.emails[strings.ToLower(req.Email)] = appID

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(signingSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, backend.CreateResponse{
		Application:  app,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		User: backend.User{
			ID:        userID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			UserType:  "BORROWER",
		},
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("application not found"))
		return
	}
	writeJSON(w, http.StatusOK, rec.app)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var patch backend.SavePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("application not found"))
		return
	}

	if patch.Borrower != nil {
		if rec.app.Borrower == nil {
			rec.app.Borrower = &backend.BorrowerPayload{ID: uuid.NewString()}
			rec.app.BorrowerID = rec.app.Borrower.ID
		}
		mergeBorrower(rec.app.Borrower, patch.Borrower)
	}
	if patch.CoBorrower != nil {
		if rec.app.CoBorrower == nil {
			rec.app.CoBorrower = &backend.BorrowerPayload{ID: uuid.NewString()}
			rec.app.CoBorrowerID = rec.app.CoBorrower.ID
		}
		mergeBorrower(rec.app.CoBorrower, patch.CoBorrower)
	}
	if patch.Loan != nil && patch.Loan.LoanAmount != nil {
		rec.app.LoanAmount = *patch.Loan.LoanAmount
	}
	if patch.NextFormStep != "" {
		rec.app.CurrentFormStep = patch.NextFormStep
	}
	rec.app.LastUpdatedDate = time.Now().UTC().Format(time.RFC3339)

	writeJSON(w, http.StatusOK, rec.app)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("application not found"))
		return
	}

	total := len(rec.progress)
	done := 0
	next := ""
	for name, complete := range rec.progress {
		if complete {
			done++
		} else if next == "" {
			next = name
		}
	}
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	writeJSON(w, http.StatusOK, backend.Progress{
		ProgressPercentage:    pct,
		NextIncompleteSection: next,
		Sections:              rec.progress,
	})
}

func (s *Server) markSection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Section  string `json:"section"`
		Complete bool   `json:"complete"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Section == "" {
		writeError(w, http.StatusBadRequest, errors.New("section is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.apps[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("application not found"))
		return
	}
	rec.progress[body.Section] = body.Complete
	w.WriteHeader(http.StatusNoContent)
}

// mergeBorrower copies the fields present in src onto dst, leaving absent
// fields alone. Same semantics the client relies on for sparse saves.
func mergeBorrower(dst, src *backend.BorrowerPayload) {
	if src.FirstName != nil {
		dst.FirstName = src.FirstName
	}
	if src.MiddleName != nil {
		dst.MiddleName = src.MiddleName
	}
	if src.LastName != nil {
		dst.LastName = src.LastName
	}
	if src.Suffix != nil {
		dst.Suffix = src.Suffix
	}
	if src.Email != nil {
		dst.Email = src.Email
	}
	if src.Phone != nil {
		dst.Phone = src.Phone
	}
	if src.PhoneType != nil {
		dst.PhoneType = src.PhoneType
	}
	if src.MaritalStatus != nil {
		dst.MaritalStatus = src.MaritalStatus
	}
	if src.Citizenship != nil {
		dst.Citizenship = src.Citizenship
	}
	if src.IsVeteran != nil {
		dst.IsVeteran = src.IsVeteran
	}
	if src.LiveTogether != nil {
		dst.LiveTogether = src.LiveTogether
	}
	if src.CurrentAddress != nil {
		dst.CurrentAddress = src.CurrentAddress
	}
	if src.Address != nil {
		dst.Address = src.Address
	}
	if src.City != nil {
		dst.City = src.City
	}
	if src.State != nil {
		dst.State = src.State
	}
	if src.ZipCode != nil {
		dst.ZipCode = src.ZipCode
	}
	if src.YearsAtAddress != nil {
		dst.YearsAtAddress = src.YearsAtAddress
	}
	if src.MonthsAtAddress != nil {
		dst.MonthsAtAddress = src.MonthsAtAddress
	}
	if src.AcceptTerms != nil {
		dst.AcceptTerms = src.AcceptTerms
	}
	if src.ConsentToContact != nil {
		dst.ConsentToContact = src.ConsentToContact
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
