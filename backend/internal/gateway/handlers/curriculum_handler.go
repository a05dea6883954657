package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"resultportal/backend/internal/gateway/util"
	"resultportal/backend/internal/shared"
)

// CurriculumService is the slice of the curriculum service the handlers need
type CurriculumService interface {
	Upsert(ctx context.Context, department string, semester int32, subjects []shared.SubjectDefinition) (*shared.CurriculumMap, error)
	Get(ctx context.Context, department string, semester int32) ([]shared.SubjectDefinition, error)
	List(ctx context.Context) ([]shared.CurriculumMap, error)
}

// CurriculumHandler exposes curriculum management over REST
type CurriculumHandler struct {
	Curricula CurriculumService
}

type subjectDefinitionRequest struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Credits int32  `json:"credits" validate:"min=0"`
}

type upsertCurriculumRequest struct {
	Department string                     `json:"department" validate:"required"`
	Semester   int32                      `json:"semester" validate:"min=1,max=8"`
	Subjects   []subjectDefinitionRequest `json:"subjects" validate:"required,min=1,dive"`
}

// UpsertCurriculum handles POST /admin/curriculum. The stored subject list is
// replaced wholesale and every stored result in the cohort is re-synced.
func (h *CurriculumHandler) UpsertCurriculum(w http.ResponseWriter, r *http.Request) {
	var req upsertCurriculumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	subjects := make([]shared.SubjectDefinition, 0, len(req.Subjects))
	for _, sub := range req.Subjects {
		subjects = append(subjects, shared.SubjectDefinition{
			Name:    sub.Name,
			Code:    sub.Code,
			Credits: sub.Credits,
		})
	}

	saved, err := h.Curricula.Upsert(r.Context(), req.Department, req.Semester, subjects)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, saved)
}

// GetCurriculum handles GET /admin/curriculum?department=CSE&semester=3.
// An unmapped pair answers with an empty subject list, not 404.
func (h *CurriculumHandler) GetCurriculum(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	if department == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "department query parameter is required")
		return
	}

	semester, err := strconv.ParseInt(r.URL.Query().Get("semester"), 10, 32)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "semester query parameter must be a number")
		return
	}

	subjects, svcErr := h.Curricula.Get(r.Context(), department, int32(semester))
	if svcErr != nil {
		util.HandleServiceError(w, svcErr)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"subjects": subjects,
	})
}

// ListCurricula handles GET /admin/curriculum/all
func (h *CurriculumHandler) ListCurricula(w http.ResponseWriter, r *http.Request) {
	curricula, err := h.Curricula.List(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, curricula)
}
