package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/internal/domains/roster/repository"
	"lw-rpg-backend/internal/domains/roster/service"
	"lw-rpg-backend/internal/shared/response"
)

const (
	HeaderRosterCount = "X-Roster-Count"
	HeaderAttackCount = "X-Attack-Count"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// record JSON không bao giờ cần lớn hơn mức này
	maxBodyBytes = 1 << 20
)

// RosterService là những gì handler cần từ service layer
type RosterService interface {
	Browse(filter rosterModel.Filter) rosterModel.Summary
	Subclasses() []string
	NameIndex() ([]byte, int)
	Character(index int) (model.Character, error)
	Attacks(index int) ([]byte, int, error)
	Export() string
	ExportXLSX() ([]byte, error)
	Changes() []rosterModel.Change
	Latest(ctx context.Context) (*rosterModel.Snapshot, error)
	Add(raw string) (model.Character, int, error)
	Update(index int, raw string) (model.Character, error)
	Delete(index int) (string, error)
	Submit(ctx context.Context) (*rosterModel.Snapshot, error)
}

type AuthService interface {
	Login(ctx context.Context, password string) (*service.Token, error)
}

// Handler - HTTP handler của roster
type Handler struct {
	service RosterService
	auth    AuthService
	async   bool
}

func NewHandler(svc RosterService, auth AuthService, async bool) *Handler {
	return &Handler{service: svc, auth: auth, async: async}
}

// ========================================
// PUBLIC
// ========================================

// GetRoster - GET /v1/roster?search=&subclass=
func (h *Handler) GetRoster(c *gin.Context) {
	filter := rosterModel.Filter{
		Search:   c.Query("search"),
		Subclass: c.Query("subclass"),
	}
	response.Success(c, http.StatusOK, h.service.Browse(filter))
}

// GetSubclasses - GET /v1/roster/subclasses
func (h *Handler) GetSubclasses(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Subclasses())
}

// GetNameIndex - GET /v1/roster/names
// Trả raw name index (name\0name\0...), số record ở header X-Roster-Count
func (h *Handler) GetNameIndex(c *gin.Context) {
	buf, count := h.service.NameIndex()
	c.Header(HeaderRosterCount, strconv.Itoa(count))
	c.Data(http.StatusOK, "application/octet-stream", buf)
}

// ExportJSON - GET /v1/roster/export
func (h *Handler) ExportJSON(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="lw.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(h.service.Export()))
}

// ExportXLSX - GET /v1/roster/export.xlsx
func (h *Handler) ExportXLSX(c *gin.Context) {
	data, err := h.service.ExportXLSX()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build roster workbook")
		response.InternalServerError(c, "failed to build workbook")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="lw-roster.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// GetCharacter - GET /v1/characters/:index
func (h *Handler) GetCharacter(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	character, err := h.service.Character(index)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, character)
}

// GetAttacks - GET /v1/characters/:index/attacks
// Trả raw attacks blob (attack\0attack\0...), số attack ở header X-Attack-Count
func (h *Handler) GetAttacks(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	blob, count, err := h.service.Attacks(index)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header(HeaderAttackCount, strconv.Itoa(count))
	c.Data(http.StatusOK, "application/octet-stream", blob)
}

// Login - POST /v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req rosterModel.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "validation failed", err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, token)
}

// ========================================
// ADMIN
// ========================================

// CreateCharacter - POST /v1/characters (body: raw character JSON)
func (h *Handler) CreateCharacter(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	character, index, err := h.service.Add(raw)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rosterModel.CharacterCreated{Index: index, Character: character})
}

// UpdateCharacter - PUT /v1/characters/:index
func (h *Handler) UpdateCharacter(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	character, err := h.service.Update(index, raw)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, character)
}

// DeleteCharacter - DELETE /v1/characters/:index
func (h *Handler) DeleteCharacter(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	name, err := h.service.Delete(index)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": name})
}

// GetChanges - GET /v1/roster/changes
func (h *Handler) GetChanges(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Changes())
}

// GetLatestSnapshot - GET /v1/roster/snapshots/latest
func (h *Handler) GetLatestSnapshot(c *gin.Context) {
	snapshot, err := h.service.Latest(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snapshot)
}

// Submit - POST /v1/roster/submit
func (h *Handler) Submit(c *gin.Context) {
	snapshot, err := h.service.Submit(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusCreated
	if h.async {
		status = http.StatusAccepted
	}
	response.Success(c, status, rosterModel.SubmitResponse{
		SnapshotID: snapshot.ID,
		Title:      snapshot.Title,
		Message:    snapshot.Message,
		Count:      snapshot.Count,
		Async:      h.async,
		CreatedAt:  snapshot.CreatedAt,
	})
}

// ========================================
// HELPERS
// ========================================

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.BadRequest(c, "index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

func readBody(c *gin.Context) (string, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return "", false
	}
	if len(raw) > maxBodyBytes {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, response.CodeBadRequest, "request body too large")
		return "", false
	}
	return string(raw), true
}

// handleError map domain error sang HTTP response
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMalformed):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, response.CodeMalformed, err.Error())
	case errors.Is(err, roster.ErrIndexOutOfRange):
		response.ErrorResponse(c, http.StatusNotFound, response.CodeOutOfRange, err.Error())
	case errors.Is(err, service.ErrNothingToSubmit):
		response.ErrorResponse(c, http.StatusConflict, response.CodeNothingToSubmit, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, response.CodeInvalidCredential, err.Error())
	case errors.Is(err, service.ErrAuthDisabled):
		response.ErrorResponse(c, http.StatusServiceUnavailable, response.CodeUnauthorized, err.Error())
	case errors.Is(err, repository.ErrNoSnapshot):
		response.NotFound(c, err.Error())
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Unhandled roster error")
		response.InternalServerError(c, "internal server error")
	}
}
