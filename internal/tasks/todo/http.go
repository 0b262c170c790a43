// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/taskflow/internal/platform/request"
	"github.com/taibuivan/taskflow/internal/platform/respond"
	"github.com/taibuivan/taskflow/internal/platform/validate"
)

// Handler implements the todo HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with todo routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Put("/reorder", handler.reorder)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type subTaskRequest struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

type createRequest struct {
	TaskTitle   string           `json:"taskTitle"`
	Category    string           `json:"category"`
	SubTask     []subTaskRequest `json:"subTask"`
	IsCompleted bool             `json:"isCompleted"`
}

type updateRequest struct {
	TaskTitle   *string           `json:"taskTitle"`
	Category    *string           `json:"category"`
	SubTask     *[]subTaskRequest `json:"subTask"`
	IsCompleted *bool             `json:"isCompleted"`
}

type reference struct {
	ID string `json:"id"`
}

// reorderRequest accepts both list keys sent by past clients.
type reorderRequest struct {
	Tasks []reference `json:"tasks"`
	Todos []reference `json:"todos"`
}

func (input reorderRequest) ids() ([]string, bool) {
	refs := input.Tasks
	if refs == nil {
		refs = input.Todos
	}
	if refs == nil {
		return nil, false
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids, true
}

func toSubTaskInputs(requests []subTaskRequest) []SubTaskInput {
	inputs := make([]SubTaskInput, len(requests))
	for i, request := range requests {
		inputs[i] = SubTaskInput(request)
	}
	return inputs
}

// # Handlers

/*
List returns the caller's todos.

GET /api/todos

Response:
  - 200: []Todo ordered by order, with the category embedded
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	todos, err := handler.service.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, todos)
}

/*
Create adds a todo at the end of the caller's list.

POST /api/todos

Request:
  - Body: createRequest (TaskTitle, Category, SubTask, IsCompleted)

Response:
  - 201: Todo
  - 400: Validation failure or foreign category
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	todo, err := handler.service.Create(request.Context(), userID, CreateInput{
		TaskTitle:   input.TaskTitle,
		CategoryID:  input.Category,
		SubTasks:    toSubTaskInputs(input.SubTask),
		IsCompleted: input.IsCompleted,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, todo)
}

/*
Update replaces the provided fields of a todo.

PUT /api/todos/{id}

Response:
  - 200: Todo
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

	update := UpdateInput{
		TaskTitle:   input.TaskTitle,
		CategoryID:  input.Category,
		IsCompleted: input.IsCompleted,
	}
	if input.SubTask != nil {
		subTasks := toSubTaskInputs(*input.SubTask)
		update.SubTasks = &subTasks
	}

	todo, err := handler.service.Update(request.Context(), userID, requestutil.Param(request, "id"), update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, todo)
}

/*
Delete removes a todo.

DELETE /api/todos/{id}

Response:
  - 200: Message
  - 404: Not found or not owned
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, messageDeleted)
}

/*
Reorder persists a new todo order.

PUT /api/todos/reorder

Request:
  - Body: reorderRequest (Tasks or Todos)

Response:
  - 200: []Todo in the new order
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

	ids, ok := input.ids()
	if !ok {
		respond.Error(writer, request, validate.RequiredError(FieldTasks, "Invalid tasks data"))
		return
	}

	todos, err := handler.service.Reorder(request.Context(), userID, ids)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, todos)
}
