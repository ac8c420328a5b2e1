package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"student-manager-go/app"
	"student-manager-go/db"
	"student-manager-go/form"
	"student-manager-go/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler holds the dependencies for API handlers, the page session
type APIHandler struct {
	Session *app.Session
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(session *app.Session) *APIHandler {
	return &APIHandler{
		Session: session,
	}
}

// RegisterRoutes mounts every endpoint under /api
func (h *APIHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.GET("/ping", PingHandler)
		api.GET("/view", h.GetView)
		api.POST("/search", h.Search)

		// Student routes
		api.GET("/students", h.GetStudents)
		api.DELETE("/students/:id", h.DeleteStudent)

		// Form routes
		api.POST("/form/add", h.OpenAddForm)
		api.POST("/form/edit/:id", h.OpenEditForm)
		api.POST("/form/cancel", h.CancelForm)
		api.POST("/form/submit", h.SubmitForm)

		// Spreadsheet routes
		api.POST("/import/students", h.ImportStudents)
		api.GET("/export/students", h.ExportStudents)
	}
}

// --- Page Handlers ---

// GetView handles GET /api/view
func (h *APIHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.View())
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search handles POST /api/search
func (h *APIHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Session.Search(req.Query))
}

// --- Student Handlers ---

// GetStudents handles GET /api/students?q=
func (h *APIHandler) GetStudents(c *gin.Context) {
	students := store.Filter(h.Session.Records().All(), c.Query("q"))
	c.JSON(http.StatusOK, students)
}

// DeleteStudent handles DELETE /api/students/:id
func (h *APIHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	view, err := h.Session.Delete(c.Request.Context(), id)
	if err != nil {
		log.Errorf("Error in DeleteStudent handler for ID %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- Form Handlers ---

// OpenAddForm handles POST /api/form/add
func (h *APIHandler) OpenAddForm(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.OpenForAdd())
}

// OpenEditForm handles POST /api/form/edit/:id
func (h *APIHandler) OpenEditForm(c *gin.Context) {
	id := c.Param("id")
	view, err := h.Session.OpenForEdit(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found", "view": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelForm handles POST /api/form/cancel
func (h *APIHandler) CancelForm(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.Cancel())
}

// submitRequest accepts age as a JSON number; a missing age is left for
// form validation to report
type submitRequest struct {
	Name    string `json:"name"`
	Age     *int   `json:"age"`
	Address string `json:"address"`
	Class   string `json:"class"`
}

func (r submitRequest) values() form.Values {
	v := form.Values{Name: r.Name, Address: r.Address, Class: r.Class}
	if r.Age != nil {
		v.Age = strconv.Itoa(*r.Age)
	}
	return v
}

// SubmitForm handles POST /api/form/submit
func (h *APIHandler) SubmitForm(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	view, err := h.Session.Submit(c.Request.Context(), req.values())
	if err != nil {
		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Missing required fields", "fields": verr.Fields, "view": view})
		case errors.Is(err, form.ErrClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "No form is open", "view": view})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusConflict, gin.H{"error": "Student no longer exists", "view": view})
		default:
			log.Errorf("Error in SubmitForm handler: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save student", "view": view})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- Spreadsheet Handlers ---

// ImportStudents handles POST /api/import/students
func (h *APIHandler) ImportStudents(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Warnf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	log.Infof("Received file upload: %s", header.Filename)

	rows, skipped, err := db.ReadStudentsFromExcel(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read spreadsheet: " + err.Error()})
		return
	}

	imported, view, err := h.Session.Import(c.Request.Context(), rows)
	if err != nil {
		log.Errorf("Error importing students from file %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import students: " + err.Error(), "importedCount": imported})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": imported,
		"skippedCount":  skipped,
		"view":          view,
	})
}

// ExportStudents handles GET /api/export/students
func (h *APIHandler) ExportStudents(c *gin.Context) {
	var buf bytes.Buffer
	if err := db.WriteStudentsToExcel(&buf, h.Session.Records().All()); err != nil {
		log.Errorf("Error exporting students: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export students"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PingHandler handles GET /api/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}

