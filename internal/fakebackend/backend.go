package fakebackend

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
	"github.com/MrEthical07/dashAuth/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Config configures a Backend.
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	Clock    func() time.Time
	// Code generates verification and OTP codes. Defaults to six random digits.
	Code func() string
}

// Account is a registered user.
type Account struct {
	User     authapi.User
	Password string
	Role     authapi.Role
}

type failure struct {
	status int
	body   map[string]string
}

// Backend serves the auth endpoints from memory. Safe for concurrent use.
type Backend struct {
	issuer *jwt.Issuer
	code   func() string

	mu        sync.Mutex
	accounts  map[string]*Account
	links     map[string]string
	otps      map[string]string
	google    map[string]string
	failures  map[string]failure
	requests  map[string]int
	lastCodes map[string]string
}

func New(cfg Config) (*Backend, error) {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("dashauth-fakebackend-secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.Code == nil {
		cfg.Code = randomCode
	}
	issuer, err := jwt.NewIssuer(jwt.IssuerConfig{
		Secret: cfg.Secret,
		TTL:    cfg.TokenTTL,
		Issuer: "dashauth-fakebackend",
		Clock:  cfg.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("fakebackend: %w", err)
	}
	return &Backend{
		issuer:    issuer,
		code:      cfg.Code,
		accounts:  make(map[string]*Account),
		links:     make(map[string]string),
		otps:      make(map[string]string),
		google:    make(map[string]string),
		failures:  make(map[string]failure),
		requests:  make(map[string]int),
		lastCodes: make(map[string]string),
	}, nil
}

// AddAccount registers an account. An empty ID is generated.
func (b *Backend) AddAccount(a Account) authapi.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.User.ID == "" {
		a.User.ID = uuid.NewString()
	}
	acct := a
	b.accounts[normalize(a.User.Email)] = &acct
	return acct.User
}

// Account returns a copy of the account registered for email.
func (b *Backend) Account(email string) (Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[normalize(email)]
	if !ok {
		return Account{}, false
	}
	return *acct, true
}

// AcceptGoogleToken makes idToken sign in as email.
func (b *Backend) AcceptGoogleToken(idToken, email string) {
	b.mu.Lock()
	b.google[idToken] = normalize(email)
	b.mu.Unlock()
}

// FailNext makes the next request to path answer status with body instead
// of being served. path is the route without query string.
func (b *Backend) FailNext(path string, status int, body map[string]string) {
	b.mu.Lock()
	b.failures[path] = failure{status: status, body: body}
	b.mu.Unlock()
}

// LastCode returns the most recent verification or OTP code sent to email.
func (b *Backend) LastCode(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCodes[normalize(email)]
}

// Requests counts served and failed requests to path.
func (b *Backend) Requests(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

// IssueToken mints an access token for an existing account.
func (b *Backend) IssueToken(email string) (string, error) {
	acct, ok := b.Account(email)
	if !ok {
		return "", errors.New("fakebackend: unknown account")
	}
	return b.issuer.Issue(acct.User.ID, acct.User.Email)
}

// Handler returns the router. Mount it at the API base path.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.intercept)
	r.Post(route(authapi.PathSignIn), b.handleSignIn)
	r.Post(route(authapi.PathSignUp), b.handleSignUp)
	r.Post(route(authapi.PathGoogle), b.handleGoogle)
	r.Post(route(authapi.PathForgotPassword), b.handleForgotPassword)
	r.Post(route(authapi.PathVerifyEmail), b.handleVerifyEmail)
	r.Post(route(authapi.PathRequestEmailOtp), b.handleRequestEmailOtp)
	r.Post(route(authapi.PathVerifyEmailOtp), b.handleVerifyEmailOtp)
	r.Post(route(authapi.PathResendCode), b.handleResendCode)
	r.Get(route(authapi.PathMe), b.handleMe)
	r.Post(route(authapi.PathSelectRole), b.handleSelectRole)
	return r
}

func route(path string) string {
	p, _, _ := strings.Cut(path, "?")
	return p
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[r.URL.Path]++
		f, ok := b.failures[r.URL.Path]
		if ok {
			delete(b.failures, r.URL.Path)
		}
		b.mu.Unlock()

		if ok {
			writeJSON(w, f.status, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req authapi.SignInRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	acct, ok := b.accounts[normalize(req.Email)]
	b.mu.Unlock()
	if !ok || acct.Password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !acct.User.IsEmailVerified {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message": "Please verify your email before signing in",
			"email":   acct.User.Email,
		})
		return
	}
	b.writeSession(w, acct.User)
}

func (b *Backend) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req authapi.SignUpRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	key := normalize(req.Email)
	b.mu.Lock()
	if _, exists := b.accounts[key]; exists {
		b.mu.Unlock()
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	acct := &Account{
		User: authapi.User{
			ID:    uuid.NewString(),
			Email: strings.TrimSpace(req.Email),
			Name:  req.Name,
		},
		Password: req.Password,
	}
	b.accounts[key] = acct
	code := b.code()
	b.links[code] = key
	b.lastCodes[key] = code
	user := acct.User
	b.mu.Unlock()

	b.writeSession(w, user)
}

func (b *Backend) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req authapi.GoogleAuthRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	email, ok := b.google[req.IDToken]
	var user authapi.User
	if ok {
		acct, exists := b.accounts[email]
		if !exists {
			acct = &Account{User: authapi.User{ID: uuid.NewString(), Email: email}}
			b.accounts[email] = acct
		}
		acct.User.IsEmailVerified = true
		user = acct.User
	}
	b.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}
	b.writeSession(w, user)
}

func (b *Backend) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authapi.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	key := normalize(req.Email)
	b.mu.Lock()
	acct, ok := b.accounts[key]
	var verified bool
	if ok {
		verified = acct.User.IsEmailVerified
		if verified {
			b.lastCodes[key] = b.code()
		}
	}
	b.mu.Unlock()

	switch {
	case !ok:
		writeMessage(w, http.StatusNotFound, "No account for that email")
	case !verified:
		writeJSON(w, http.StatusForbidden, map[string]string{
			"message": "Please verify your email first",
			"email":   acct.User.Email,
		})
	default:
		writeMessage(w, http.StatusOK, "OTP sent")
	}
}

func (b *Backend) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req authapi.VerifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	key, ok := b.links[req.Code]
	var user authapi.User
	if ok {
		delete(b.links, req.Code)
		acct := b.accounts[key]
		acct.User.IsEmailVerified = true
		user = acct.User
	}
	b.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	b.writeSession(w, user)
}

func (b *Backend) handleRequestEmailOtp(w http.ResponseWriter, r *http.Request) {
	var req authapi.RequestEmailOtpRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	key := normalize(req.Email)
	b.mu.Lock()
	_, exists := b.accounts[key]
	code := b.code()
	b.otps[key] = code
	b.lastCodes[key] = code
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, authapi.RequestEmailOtpResponse{
		Message:   "OTP sent",
		IsNewUser: !exists,
	})
}

func (b *Backend) handleVerifyEmailOtp(w http.ResponseWriter, r *http.Request) {
	var req authapi.VerifyEmailOtpRequest
	if !decode(w, r, &req) {
		return
	}
	key := normalize(req.Email)
	b.mu.Lock()
	expected, ok := b.otps[key]
	if !ok || expected != req.Code {
		b.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	acct, exists := b.accounts[key]
	if !exists && strings.TrimSpace(req.Name) == "" {
		b.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Name is required for new users")
		return
	}
	delete(b.otps, key)
	if !exists {
		acct = &Account{User: authapi.User{
			ID:    uuid.NewString(),
			Email: strings.TrimSpace(req.Email),
			Name:  req.Name,
		}}
		b.accounts[key] = acct
	}
	acct.User.IsEmailVerified = true
	user := acct.User
	b.mu.Unlock()

	b.writeSession(w, user)
}

func (b *Backend) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req authapi.ResendCodeRequest
	if !decode(w, r, &req) {
		return
	}
	key := normalize(req.Email)
	b.mu.Lock()
	_, ok := b.accounts[key]
	if ok {
		code := b.code()
		for old, owner := range b.links {
			if owner == key {
				delete(b.links, old)
			}
		}
		b.links[code] = key
		b.lastCodes[key] = code
	}
	b.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "No account for that email")
		return
	}
	writeMessage(w, http.StatusOK, "Verification code sent")
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticate(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, acct.User)
}

func (b *Backend) handleSelectRole(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticate(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req authapi.SelectRoleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}
	b.mu.Lock()
	b.accounts[normalize(acct.User.Email)].Role = req.Role
	b.mu.Unlock()

	b.writeSession(w, acct.User)
}

func (b *Backend) authenticate(r *http.Request) (Account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return Account{}, false
	}
	claims, err := b.issuer.Verify(token)
	if err != nil {
		return Account{}, false
	}
	acct, ok := b.Account(claims.Email)
	if !ok || acct.User.ID != claims.Subject {
		return Account{}, false
	}
	return acct, true
}

func (b *Backend) writeSession(w http.ResponseWriter, u authapi.User) {
	token, err := b.issuer.Issue(u.ID, u.Email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Token could not be issued")
		return
	}
	writeJSON(w, http.StatusOK, authapi.AuthResponse{User: u, AccessToken: token})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
