package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/db"
	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/outbox"
	"github.com/hsinyuliao/salonbook/internal/storage"
	"github.com/hsinyuliao/salonbook/internal/token"
)

type AuthHandler struct {
	codec   *token.Codec
	pool    *db.Pool
	members *storage.MemberRepository
	outbox  *outbox.Repository
	logger  *slog.Logger
}

func NewAuthHandler(codec *token.Codec, pool *db.Pool, members *storage.MemberRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{codec: codec, pool: pool, members: members, outbox: outboxRepo, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string     `json:"token"`
	Member memberView `json:"member"`
}

// Account existence must not leak: a missing member and a wrong password
// produce the same status and message.
const badCredentialMsg = "invalid email or password"

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	member, err := h.members.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, badCredentialMsg, http.StatusUnauthorized)
			return
		}
		h.logger.Error("member lookup failed", "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	if err := verifyPassword(member.PasswordHash, req.Password); err != nil {
		http.Error(w, badCredentialMsg, http.StatusUnauthorized)
		return
	}

	raw, err := h.codec.Issue(member.ID, member.Role)
	if err != nil {
		h.logger.Error("token issue failed", "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: raw, Member: viewOfMember(member)})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	LineID   string `json:"lineId"`
	// A caller-supplied role is accepted on the wire for compatibility but
	// never trusted: every registration starts as a regular user.
	Role string `json:"role"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Birthday = strings.TrimSpace(req.Birthday)
	req.LineID = strings.TrimSpace(req.LineID)
	if req.Name == "" || req.Email == "" || req.Password == "" ||
		req.Phone == "" || req.Birthday == "" || req.LineID == "" {
		http.Error(w, "all registration fields are required", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hash failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	member := model.Member{
		ID:           uuid.NewString(),
		Role:         model.RoleUser,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Birthday:     req.Birthday,
		LineID:       req.LineID,
	}

	ctx := r.Context()
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		h.logger.Error("begin failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.members.CreateTx(ctx, tx, member); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		h.logger.Error("member insert failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"member_id":     member.ID,
		"email":         member.Email,
		"role":          member.Role,
		"registered_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "member",
		AggregateID:   member.ID,
		EventType:     outbox.EventMemberRegistered,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("outbox insert failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"member": viewOfMember(member)})
}

// Session re-resolves the token's subject against the directory so a client
// can detect a vanished account.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	member, err := h.members.GetByID(r.Context(), id.SubjectID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		h.logger.Error("member lookup failed", "err", err)
		http.Error(w, "session check failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"member": viewOfMember(member)})
}

// Logout exists for clients only; tokens are stateless and there is no
// server-side session to clear.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func verifyPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
