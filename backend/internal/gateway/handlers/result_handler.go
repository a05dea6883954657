package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"resultportal/backend/internal/gateway/util"
	"resultportal/backend/internal/shared"
)

// ResultService is the slice of the result service the handlers need
type ResultService interface {
	Upsert(ctx context.Context, rollNo string, semester int32, subjects []shared.SubjectGrade) (*shared.ResultRecord, error)
	Update(ctx context.Context, id string, semester int32, subjects []shared.SubjectGrade) (*shared.ResultRecord, error)
	ListAll(ctx context.Context) ([]shared.ResultWithStudent, error)
	ListForStudent(ctx context.Context, rollNo string) ([]shared.ResultRecord, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (bool, error)
	BatchPublish(ctx context.Context, department, batch string, semester int32) (int64, error)
}

// ResultHandler exposes result management and the student read path over REST
type ResultHandler struct {
	Results ResultService
}

type subjectGradeRequest struct {
	SubjectName string `json:"subject_name" validate:"required"`
	SubjectCode string `json:"subject_code"`
	Credits     int32  `json:"credits" validate:"min=0"`
	Grade       string `json:"grade" validate:"required"`
}

type upsertResultRequest struct {
	RollNo   string                `json:"roll_no" validate:"required"`
	Semester int32                 `json:"semester" validate:"min=1,max=8"`
	Subjects []subjectGradeRequest `json:"subjects" validate:"required,min=1,dive"`
}

type updateResultRequest struct {
	Semester int32                 `json:"semester" validate:"min=1,max=8"`
	Subjects []subjectGradeRequest `json:"subjects" validate:"required,min=1,dive"`
}

type batchPublishRequest struct {
	Department string `json:"department" validate:"required"`
	Batch      string `json:"batch" validate:"required"`
	Semester   int32  `json:"semester" validate:"min=1,max=8"`
}

func toSubjectGrades(in []subjectGradeRequest) []shared.SubjectGrade {
	out := make([]shared.SubjectGrade, 0, len(in))
	for _, sub := range in {
		out = append(out, shared.SubjectGrade{
			SubjectName: sub.SubjectName,
			SubjectCode: sub.SubjectCode,
			Credits:     sub.Credits,
			Grade:       sub.Grade,
		})
	}
	return out
}

// UpsertResult handles POST /admin/results
func (h *ResultHandler) UpsertResult(w http.ResponseWriter, r *http.Request) {
	var req upsertResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Results.Upsert(r.Context(), req.RollNo, req.Semester, toSubjectGrades(req.Subjects))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, rec)
}

// UpdateResult handles PUT /admin/results/{id}
func (h *ResultHandler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Results.Update(r.Context(), id, req.Semester, toSubjectGrades(req.Subjects))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, rec)
}

// ListResults handles GET /admin/results
func (h *ResultHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Results.ListAll(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, results)
}

// DeleteResult handles DELETE /admin/results/{id}
func (h *ResultHandler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Results.Delete(r.Context(), id); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Result deleted",
	})
}

// ToggleResult handles PATCH /admin/results/{id}/toggle
func (h *ResultHandler) ToggleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	published, err := h.Results.Toggle(r.Context(), id)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"published": published,
	})
}

// BatchPublishResults handles POST /admin/results/publish
func (h *ResultHandler) BatchPublishResults(w http.ResponseWriter, r *http.Request) {
	var req batchPublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.Results.BatchPublish(r.Context(), req.Department, req.Batch, req.Semester)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"published": count,
	})
}

// GetStudentResults handles GET /students/{rollNo}/results. Only published
// records are visible on this route; drafts stay admin-only.
func (h *ResultHandler) GetStudentResults(w http.ResponseWriter, r *http.Request) {
	rollNo := chi.URLParam(r, "rollNo")

	records, err := h.Results.ListForStudent(r.Context(), rollNo)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	published := make([]shared.ResultRecord, 0, len(records))
	for _, rec := range records {
		if rec.Published {
			published = append(published, rec)
		}
	}

	util.WriteJSON(w, http.StatusOK, published)
}
