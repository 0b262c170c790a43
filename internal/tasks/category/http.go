// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/taskflow/internal/platform/request"
	"github.com/taibuivan/taskflow/internal/platform/respond"
	"github.com/taibuivan/taskflow/internal/platform/validate"
)

// Handler implements the category HTTP endpoints.
//
// Every route expects an authenticated principal in the request context.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with category routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	// Registered before /{id} so "reorder" is never taken for an id.
	router.Put("/reorder", handler.reorder)

	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

type updateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type reference struct {
	ID string `json:"id"`
}

type reorderRequest struct {
	Categories []reference `json:"categories"`
}

/*
List returns the caller's categories.

GET /api/categories

Response:
  - 200: []Category ordered by order, with taskCount
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	categories, err := handler.service.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, categories)
}

/*
Update renames and recolors a category.

PUT /api/categories/{id}

Request:
  - Body: updateRequest (Name, Color)

Response:
  - 200: Category
  - 400: Validation failure
  - 404: Not found or not owned
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Update(request.Context(), userID, requestutil.Param(request, "id"), UpdateInput{
		Name:  input.Name,
		Color: input.Color,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

/*
Reorder persists a new category order.

PUT /api/categories/reorder

Request:
  - Body: reorderRequest (Categories)

Response:
  - 200: []Category in the new order
  - 400: Missing or malformed list
*/
func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Categories == nil {
		respond.Error(writer, request, validate.RequiredError(FieldCategories, "Invalid categories data"))
		return
	}

	ids := make([]string, len(input.Categories))
	for i, ref := range input.Categories {
		ids[i] = ref.ID
	}

	categories, err := handler.service.Reorder(request.Context(), userID, ids)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, categories)
}

// The category set is fixed per account.

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, ErrCreateForbidden)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, ErrDeleteForbidden)
}
