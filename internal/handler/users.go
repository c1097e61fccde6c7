package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/cinetrack/cinetrack/internal/service"
)

type usersHandler struct {
	authService      *service.AuthService
	watchlistService *service.WatchlistService
}

func NewUsersHandler(authService *service.AuthService, watchlistService *service.WatchlistService) *usersHandler {
	return &usersHandler{
		authService:      authService,
		watchlistService: watchlistService,
	}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type addMovieRequest struct {
	Movie   *model.MovieSummary `json:"movie"`
	MovieID json.RawMessage     `json:"movieId"`
}

func (h *usersHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	err = h.authService.SendOTP(req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent"})
}

// Login serves both variants of POST /users/login, discriminated by field
// presence: an otp field means OTP verification, a password field means
// password login. Sending both (or neither) is rejected.
func (h *usersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	var account *model.Account
	switch {
	case req.OTP != "" && req.Password != "":
		writeError(w, http.StatusBadRequest, "Provide either otp or password, not both")
		return
	case req.OTP != "":
		account, err = h.authService.VerifyOTP(req.Email, req.OTP, req.Nickname)
	case req.Password != "":
		account, err = h.authService.Login(req.Email, req.Password)
	default:
		writeError(w, http.StatusBadRequest, "OTP or password is required")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSessionToken(w, account)
	writeJSON(w, http.StatusOK, account)
}

func (h *usersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.authService.Signup(req.Email, req.Password, req.Name, req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSessionToken(w, account)
	writeJSON(w, http.StatusCreated, account)
}

func (h *usersHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	account, err := h.watchlistService.Account(email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *usersHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var req addMovieRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	movieID, err := parseMovieID(req.MovieID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	watchlist, err := h.watchlistService.Add(email, movieID, req.Movie)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, watchlist)
}

func (h *usersHandler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	movieID, err := strconv.ParseInt(r.PathValue("movieId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	watchlist, err := h.watchlistService.Remove(email, movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, watchlist)
}

func (h *usersHandler) setSessionToken(w http.ResponseWriter, account *model.Account) {
	token, err := h.authService.GenerateSessionToken(account)
	if err != nil {
		// The login itself succeeded; clients without a token fall back
		// to unauthenticated requests.
		return
	}
	w.Header().Set("X-Auth-Token", token)
}

// parseMovieID accepts the movieId field as a JSON number or a quoted
// string, matching what the historical clients send. Absent means 0.
func parseMovieID(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
