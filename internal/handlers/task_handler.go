package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskverse/internal/models"
	"taskverse/internal/services"
	"taskverse/internal/view"
)

type TaskHandler struct {
	service        services.TaskService
	reports        services.ReportService
	strictNotFound bool
	now            func() time.Time
}

func NewTaskHandler(service services.TaskService, reports services.ReportService, strictNotFound bool) *TaskHandler {
	return &TaskHandler{service: service, reports: reports, strictNotFound: strictNotFound, now: time.Now}
}

// List godoc
// @Summary      List all tasks
// @Description  Returns every task, newest first.
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	log.Printf("[task][list] call by userID=%q", callerID(c))
	tasks, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "task][list", err)
		return
	}
	log.Printf("[task][list][ok] count=%d", len(tasks))
	respondSuccess(c, tasks)
}

// Create godoc
// @Summary      Create a task
// @Description  Missing fields take their defaults; the caller becomes the owner when signed in.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      models.Task  true  "Task fields (partial)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/createTask [post]
func (h *TaskHandler) Create(c *gin.Context) {
	uid := callerID(c)
	log.Printf("[task][create] call by userID=%q", uid)

	body, err := readBody(c)
	if err != nil {
		respondError(c, "task][create", err)
		return
	}
	patch, err := models.DecodeTaskPatch(body)
	if err != nil {
		respondError(c, "task][create", err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), patch, uid)
	if err != nil {
		respondError(c, "task][create", err)
		return
	}
	log.Printf("[task][create][ok] id=%s title=%q", created.ID, created.Title)
	respondSuccess(c, created)
}

// Update godoc
// @Summary      Update a task
// @Description  Overwrites only the supplied fields.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      models.Task  true  "Task fields (partial)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	uid := callerID(c)
	log.Printf("[task][update] call by userID=%q id_param=%s", uid, c.Param("id"))

	id, err := services.ParseTaskID(c.Param("id"))
	if err != nil {
		respondError(c, "task][update", err)
		return
	}
	body, err := readBody(c)
	if err != nil {
		respondError(c, "task][update", err)
		return
	}
	patch, err := models.DecodeTaskPatch(body)
	if err != nil {
		respondError(c, "task][update", err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, patch, uid)
	if errors.Is(err, services.ErrTaskNotFound) && !h.strictNotFound {
		log.Printf("[task][update][miss] id=%s", id)
		c.JSON(http.StatusOK, gin.H{"result": models.ResultSuccess, "data": nil})
		return
	}
	if err != nil {
		respondError(c, "task][update", err)
		return
	}
	log.Printf("[task][update][ok] id=%s", id)
	respondSuccess(c, updated)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	uid := callerID(c)
	log.Printf("[task][delete] call by userID=%q id_param=%s", uid, c.Param("id"))

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		respondError(c, "task][delete", err)
		return
	}
	log.Printf("[task][delete][ok] id=%s", c.Param("id"))
	respondMessage(c, "Id Deleted")
}

// Report godoc
// @Summary      Task report
// @Description  PDF of the filtered, sorted task view with summary stats.
// @Tags         tasks
// @Produce      application/pdf
// @Param        filter  query  string  false  "all | completed | pending"
// @Param        search  query  string  false  "case-insensitive text match"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/report.pdf [get]
func (h *TaskHandler) Report(c *gin.Context) {
	mode, ok := view.ParseFilterMode(c.Query("filter"))
	if !ok {
		respondFail(c, http.StatusBadRequest, "message", "Invalid filter: use all, completed or pending")
		return
	}
	var buf bytes.Buffer
	if err := h.reports.TaskReport(c.Request.Context(), &buf, mode, c.Query("search"), h.now()); err != nil {
		respondError(c, "task][report", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="tasks.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
