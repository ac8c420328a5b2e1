package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"student-manager-go/app"
	"student-manager-go/db"
	"student-manager-go/handlers"
	"student-manager-go/models"
	"student-manager-go/store"
)

func setup(t *testing.T) (*gin.Engine, *store.RecordStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	records := store.New(context.Background(), db.NewMemoryPersistence())
	return handlers.NewRouter(app.NewSession(records)), records
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type viewBody struct {
	Query    string           `json:"query"`
	Students []models.Student `json:"students"`
	Total    int              `json:"total"`
	Form     struct {
		Mode     string            `json:"mode"`
		Title    string            `json:"title"`
		TargetID string            `json:"targetId"`
		Errors   map[string]string `json:"errors"`
		Values   map[string]string `json:"values"`
	} `json:"form"`
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var v viewBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestPing(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Pong!"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAddThroughForm(t *testing.T) {
	r, records := setup(t)

	w := do(t, r, http.MethodPost, "/api/form/add", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, "adding", v.Form.Mode)
	assert.Equal(t, "Add Student", v.Form.Title)
	assert.Equal(t, "18", v.Form.Values["age"])

	w = do(t, r, http.MethodPost, "/api/form/submit", map[string]any{
		"name": "Ann", "age": 10, "address": "X", "class": "3A",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v = decodeView(t, w)
	assert.Equal(t, "closed", v.Form.Mode)
	assert.Equal(t, []models.Student{{ID: "3A_1", Name: "Ann", Age: 10, Address: "X", Class: "3A"}}, v.Students)
	assert.Equal(t, 1, records.Len())
}

func TestSubmitMissingFields(t *testing.T) {
	r, records := setup(t)
	do(t, r, http.MethodPost, "/api/form/add", nil)

	w := do(t, r, http.MethodPost, "/api/form/submit", map[string]any{"name": "Ann"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
		View   viewBody          `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Please input the age!", body.Fields["age"])
	assert.Contains(t, body.Fields, "address")
	assert.Contains(t, body.Fields, "class")
	assert.Equal(t, "adding", body.View.Form.Mode)
	assert.Zero(t, records.Len())
}

func TestSubmitWithoutOpenForm(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodPost, "/api/form/submit", map[string]any{
		"name": "Ann", "age": 10, "address": "X", "class": "3A",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmitInvalidJSON(t *testing.T) {
	r, _ := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/api/form/submit", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditSearchDelete(t *testing.T) {
	r, records := setup(t)
	ctx := context.Background()
	_, err := records.Add(ctx, models.StudentFields{Name: "Ann", Age: 10, Address: "X", Class: "3A"})
	require.NoError(t, err)
	_, err = records.Add(ctx, models.StudentFields{Name: "Bob", Age: 11, Address: "Y", Class: "4B"})
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/api/form/edit/3A_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, "editing", v.Form.Mode)
	assert.Equal(t, "3A_1", v.Form.TargetID)
	assert.Equal(t, "10", v.Form.Values["age"])

	w = do(t, r, http.MethodPost, "/api/form/submit", map[string]any{
		"name": "Anna", "age": 12, "address": "Z", "class": "3A",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/search", map[string]string{"query": "ANNA"})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	require.Len(t, v.Students, 1)
	assert.Equal(t, models.Student{ID: "3A_1", Name: "Anna", Age: 12, Address: "Z", Class: "3A"}, v.Students[0])
	assert.Equal(t, 2, v.Total)

	w = do(t, r, http.MethodGet, "/api/students?q=4b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "4B_2", listed[0].ID)

	w = do(t, r, http.MethodDelete, "/api/students/3A_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeView(t, w).Students, "query ANNA is still active")

	w = do(t, r, http.MethodDelete, "/api/students/3A_1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, records.Len())
}

func TestEditUnknownStudent(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodPost, "/api/form/edit/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAfterTargetDeleted(t *testing.T) {
	r, records := setup(t)
	_, err := records.Add(context.Background(), models.StudentFields{Name: "Ann", Age: 10, Address: "X", Class: "3A"})
	require.NoError(t, err)

	do(t, r, http.MethodPost, "/api/form/edit/3A_1", nil)
	do(t, r, http.MethodDelete, "/api/students/3A_1", nil)

	w := do(t, r, http.MethodPost, "/api/form/submit", map[string]any{
		"name": "Ann", "age": 10, "address": "X", "class": "3A",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/view", nil)
	assert.Equal(t, "editing", decodeView(t, w).Form.Mode)

	w = do(t, r, http.MethodPost, "/api/form/cancel", nil)
	assert.Equal(t, "closed", decodeView(t, w).Form.Mode)
}

func TestImportAndExport(t *testing.T) {
	r, records := setup(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Age", "Address", "Class"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Ann", 10, "X", "3A"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"", 10, "X", "3A"}))
	var xlsx bytes.Buffer
	require.NoError(t, f.Write(&xlsx))
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "students.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/students", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ImportedCount int `json:"importedCount"`
		SkippedCount  int `json:"skippedCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ImportedCount)
	assert.Equal(t, 1, resp.SkippedCount)
	assert.Equal(t, []models.Student{{ID: "3A_1", Name: "Ann", Age: 10, Address: "X", Class: "3A"}}, records.All())

	w = do(t, r, http.MethodGet, "/api/export/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows, skipped, err := db.ReadStudentsFromExcel(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, []models.StudentFields{records.All()[0].Fields()}, rows)
}

func TestImportWithoutFile(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodPost, "/api/import/students", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
