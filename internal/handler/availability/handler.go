package availability

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/handler"
	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/service/availability"
	"github.com/jwalitptl/availability-api/internal/service/calendar"
	apperrors "github.com/jwalitptl/availability-api/pkg/errors"
)

const defaultOccurrenceWindowDays = 90

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cal := r.Group("/calendar")
	{
		cal.GET("/month", h.calendarView(calendar.ViewMonth))
		cal.GET("/week", h.calendarView(calendar.ViewWeek))
		cal.GET("/day", h.calendarView(calendar.ViewDay))
		cal.GET("/navigate", h.Navigate)
	}

	slots := r.Group("/slots")
	{
		slots.GET("", h.ListSlots)
		slots.GET("/export", h.Export)
		slots.POST("/validate", h.ValidateForm)
		slots.GET("/:id", h.GetSlot)
		slots.GET("/:id/occurrences", h.Occurrences)
	}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.OpenAdd)
		sessions.POST("/edit/:slotId", h.OpenEdit)
		sessions.GET("/:sid", h.GetSession)
		sessions.DELETE("/:sid", h.Cancel)
		sessions.POST("/:sid/submit", h.Submit)
		sessions.PUT("/:sid/selection", h.SetSelection)
		sessions.PATCH("/:sid/selection", h.UpdateSelection)
		sessions.POST("/:sid/bulk-delete", h.BulkDelete)
		sessions.POST("/:sid/bulk-copy", h.BulkCopy)
	}
}

type openAddRequest struct {
	Date      string `json:"date"`
	SessionID string `json:"session_id"`
}

type openEditRequest struct {
	SessionID string `json:"session_id"`
}

type selectionRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type selectionPatchRequest struct {
	Add    []uuid.UUID `json:"add"`
	Remove []uuid.UUID `json:"remove"`
}

type bulkDeleteRequest struct {
	IDs       []uuid.UUID `json:"ids"`
	Confirmed bool        `json:"confirmed"`
}

type bulkCopyRequest struct {
	IDs        []uuid.UUID `json:"ids"`
	OffsetDays int         `json:"offset_days"`
}

func (h *Handler) calendarView(view calendar.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		focus, ok := focusDate(c, c.Query("date"))
		if !ok {
			return
		}
		grid, err := h.service.Calendar(c.Request.Context(), view, focus)
		if err != nil {
			handler.Fail(c, toAppError(err))
			return
		}
		handler.Success(c, http.StatusOK, grid)
	}
}

func (h *Handler) Navigate(c *gin.Context) {
	focus, ok := focusDate(c, c.Query("date"))
	if !ok {
		return
	}
	view, err := calendar.ParseView(c.DefaultQuery("view", string(calendar.ViewMonth)))
	if err != nil {
		handler.Fail(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	next, err := h.service.Navigate(focus, view, c.Query("direction"))
	if err != nil {
		handler.Fail(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}
	handler.Success(c, http.StatusOK, gin.H{
		"date": calendar.FormatDate(next),
		"view": view,
	})
}

func (h *Handler) ListSlots(c *gin.Context) {
	filter, ok := slotFilter(c)
	if !ok {
		return
	}
	slots, err := h.service.ListSlots(c.Request.Context(), filter)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, slots)
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	slot, err := h.service.GetSlot(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, slot)
}

func (h *Handler) Occurrences(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	from := calendar.Today(time.Now())
	if raw := c.Query("from"); raw != "" {
		if from, ok = parseDateParam(c, "from", raw); !ok {
			return
		}
	}
	to := from.AddDate(0, 0, defaultOccurrenceWindowDays)
	if raw := c.Query("to"); raw != "" {
		if to, ok = parseDateParam(c, "to", raw); !ok {
			return
		}
	}

	dates, err := h.service.Occurrences(c.Request.Context(), id, from, to)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, gin.H{"slot_id": id, "dates": dates})
}

func (h *Handler) Export(c *gin.Context) {
	filter, ok := slotFilter(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), filter, c.DefaultQuery("format", availability.ExportXLSX))
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) ValidateForm(c *gin.Context) {
	var form model.SlotForm
	if err := c.ShouldBindJSON(&form); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid slot form", err))
		return
	}
	msgs := h.service.ValidateForm(form)
	handler.Success(c, http.StatusOK, gin.H{"valid": len(msgs) == 0, "errors": msgs})
}

func (h *Handler) OpenAdd(c *gin.Context) {
	var req openAddRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}
	focus, ok := focusDate(c, req.Date)
	if !ok {
		return
	}
	sess, err := h.service.OpenAdd(c.Request.Context(), req.SessionID, focus)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusCreated, sess)
}

func (h *Handler) OpenEdit(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	var req openEditRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}
	sess, err := h.service.OpenEdit(c.Request.Context(), req.SessionID, id)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusCreated, sess)
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.service.GetSession(c.Param("sid"))
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, sess)
}

func (h *Handler) Cancel(c *gin.Context) {
	sess, err := h.service.Cancel(c.Param("sid"))
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, sess)
}

func (h *Handler) Submit(c *gin.Context) {
	var form model.SlotForm
	if err := c.ShouldBindJSON(&form); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid slot form", err))
		return
	}
	slot, err := h.service.Submit(c.Request.Context(), c.Param("sid"), form)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, slot)
}

func (h *Handler) SetSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid selection", err))
		return
	}
	sess, err := h.service.SetSelection(c.Param("sid"), req.IDs)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, sess)
}

func (h *Handler) UpdateSelection(c *gin.Context) {
	var req selectionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid selection", err))
		return
	}
	sid := c.Param("sid")
	sess, err := h.service.Select(sid, req.Add)
	if err == nil && len(req.Remove) > 0 {
		sess, err = h.service.Deselect(sid, req.Remove)
	}
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, sess)
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}
	result, err := h.service.BulkDelete(c.Request.Context(), c.Param("sid"), req.IDs, req.Confirmed)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusOK, result)
}

func (h *Handler) BulkCopy(c *gin.Context) {
	var req bulkCopyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}
	copies, err := h.service.BulkCopy(c.Request.Context(), c.Param("sid"), req.IDs, req.OffsetDays)
	if err != nil {
		handler.Fail(c, toAppError(err))
		return
	}
	handler.Success(c, http.StatusCreated, copies)
}

// bindOptionalJSON treats an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid slot ID", err))
		return uuid.Nil, false
	}
	return id, true
}

// focusDate parses raw as YYYY-MM-DD, defaulting to today.
func focusDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return calendar.Today(time.Now()), true
	}
	return parseDateParam(c, "date", raw)
}

func parseDateParam(c *gin.Context, name, raw string) (time.Time, bool) {
	t, err := calendar.ParseDate(raw)
	if err != nil {
		handler.Fail(c, apperrors.NewBadRequest(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name), err))
		return time.Time{}, false
	}
	return t, true
}

func slotFilter(c *gin.Context) (*model.SlotFilter, bool) {
	filter := &model.SlotFilter{Tag: c.Query("tag")}

	if d := c.Query("date"); d != "" {
		filter.From, filter.To = d, d
	} else {
		filter.From, filter.To = c.Query("from"), c.Query("to")
	}
	for name, v := range map[string]string{"from": filter.From, "to": filter.To} {
		if v == "" {
			continue
		}
		if _, ok := parseDateParam(c, name, v); !ok {
			return nil, false
		}
	}

	for _, s := range splitList(c.QueryArray("status")) {
		filter.Statuses = append(filter.Statuses, model.SlotStatus(s))
	}
	for _, s := range splitList(c.QueryArray("type")) {
		filter.Types = append(filter.Types, model.SlotType(s))
	}
	return filter, true
}

// splitList accepts both repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
