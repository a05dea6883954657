package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"resultportal/backend/internal/gateway/util"
	"resultportal/backend/internal/shared"
	"resultportal/backend/internal/student"
)

// validate is shared by every handler in this package
var validate = validator.New()

// StudentService is the slice of the student service the handlers need
type StudentService interface {
	Create(ctx context.Context, in *shared.Student) (*shared.Student, error)
	BulkCreate(ctx context.Context, in []shared.Student) (*student.BulkReport, error)
	UpdateStudent(ctx context.Context, id string, upd student.Update) (*shared.Student, error)
	List(ctx context.Context) ([]shared.Student, error)
	Delete(ctx context.Context, id string) error
}

// StudentHandler exposes student management over REST
type StudentHandler struct {
	Students StudentService
}

type studentRequest struct {
	Name       string `json:"name" validate:"required"`
	RollNo     string `json:"roll_no" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"required"`
	Batch      string `json:"batch" validate:"required"`
}

type updateStudentRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department"`
	Batch      string `json:"batch"`
}

// CreateStudent handles POST /admin/students
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Students.Create(r.Context(), &shared.Student{
		Name:       req.Name,
		RollNo:     req.RollNo,
		Email:      req.Email,
		Department: req.Department,
		Batch:      req.Batch,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, created)
}

// BulkCreateStudents handles POST /admin/students/bulk
func (h *StudentHandler) BulkCreateStudents(w http.ResponseWriter, r *http.Request) {
	var reqs []studentRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Per-entry validation is left to the service, which skips bad rows
	// instead of rejecting the whole upload.
	students := make([]shared.Student, 0, len(reqs))
	for _, req := range reqs {
		students = append(students, shared.Student{
			Name:       req.Name,
			RollNo:     req.RollNo,
			Email:      req.Email,
			Department: req.Department,
			Batch:      req.Batch,
		})
	}

	report, err := h.Students.BulkCreate(r.Context(), students)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, report)
}

// UpdateStudent handles PUT /admin/students/{id}
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Students.UpdateStudent(r.Context(), id, student.Update{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Batch:      req.Batch,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, updated)
}

// ListStudents handles GET /admin/students
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Students.List(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, students)
}

// DeleteStudent handles DELETE /admin/students/{id}
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Students.Delete(r.Context(), id); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Student and their results deleted",
	})
}
