package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seisview/seisview/pkg/auth"
)

const (
	deviceCodeTTL       = 5 * time.Minute
	defaultApproveAfter = 2 * time.Second
)

type grantState int

const (
	grantUnknown grantState = iota
	grantPending
	grantApproved
	grantExpired
)

// grantStore tracks demo device-flow grants. There is no real consent
// screen: a grant auto-approves once approveAfter has elapsed, which is
// enough to exercise the full polling flow end to end.
type grantStore struct {
	mu           sync.Mutex
	grants       map[string]*grant
	approveAfter time.Duration
}

type grant struct {
	userCode  string
	createdAt time.Time
	expiresAt time.Time
}

func newGrantStore(approveAfter time.Duration) *grantStore {
	if approveAfter <= 0 {
		approveAfter = defaultApproveAfter
	}
	return &grantStore{grants: make(map[string]*grant), approveAfter: approveAfter}
}

func (g *grantStore) issue() (deviceCode, userCode string) {
	deviceCode = uuid.NewString()
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	userCode = hex[:4] + "-" + hex[4:8]

	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	g.grants[deviceCode] = &grant{
		userCode:  userCode,
		createdAt: now,
		expiresAt: now.Add(deviceCodeTTL),
	}
	return deviceCode, userCode
}

func (g *grantStore) state(deviceCode string) grantState {
	g.mu.Lock()
	defer g.mu.Unlock()
	gr, ok := g.grants[deviceCode]
	if !ok {
		return grantUnknown
	}
	if time.Now().After(gr.expiresAt) {
		delete(g.grants, deviceCode)
		return grantExpired
	}
	if time.Since(gr.createdAt) >= g.approveAfter {
		return grantApproved
	}
	return grantPending
}

func (g *grantStore) remove(deviceCode string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.grants, deviceCode)
}

func (s *Server) handleDeviceCode(w http.ResponseWriter, r *http.Request) {
	deviceCode, userCode := s.grants.issue()
	writeJSON(w, http.StatusOK, auth.DeviceCodeResponse{
		DeviceCode:      deviceCode,
		UserCode:        userCode,
		VerificationURI: "http://" + r.Host + "/auth/approve",
		ExpiresIn:       int(deviceCodeTTL.Seconds()),
		Interval:        1,
	})
}

func (s *Server) handleDeviceToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthError(w, "invalid_request", "malformed form body")
		return
	}
	deviceCode := r.PostFormValue("device_code")

	switch s.grants.state(deviceCode) {
	case grantPending:
		oauthError(w, "authorization_pending", "user has not approved yet")
		return
	case grantExpired:
		oauthError(w, "expired_token", "device code expired")
		return
	case grantUnknown:
		oauthError(w, "invalid_grant", "unknown device code")
		return
	}

	subject := r.PostFormValue("client_id")
	if subject == "" {
		subject = "device"
	}
	token, err := auth.SignSharedKey(s.cfg.SignKey, subject, time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign token")
		return
	}
	s.grants.remove(deviceCode)
	writeJSON(w, http.StatusOK, auth.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Scope:       "seisview.read",
	})
}

// handleApprove stands in for the consent page a real authority would show.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Demo grants are approved automatically. Return to your terminal.\n"))
}

func oauthError(w http.ResponseWriter, code, description string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
