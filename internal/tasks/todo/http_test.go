// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/ctxutil"
	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/tasks/todo"
)

func serve(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, []byte) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.Principal{UserID: "user-1"}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder, recorder.Body.Bytes()
}

func newRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)

	router := chi.NewRouter()
	router.Mount("/api/todos", todo.NewHandler(f.service).Routes())
	return router, f
}

func TestHandler_CreateAndList(t *testing.T) {
	router, f := newRouter(t)

	payload := `{"taskTitle":"Write report","category":"` + f.work + `","subTask":[{"text":"outline"}]}`
	recorder, body := serve(t, router, http.MethodPost, "/api/todos/", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Write report", created["taskTitle"])
	assert.Equal(t, "Work", created["category"].(map[string]any)["name"])
	assert.Len(t, created["subTask"], 1)
	assert.NotContains(t, created, "userId")

	recorder, body = serve(t, router, http.MethodGet, "/api/todos/", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var list []todo.Todo
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created["id"], list[0].ID)
}

func TestHandler_CreateRejectsForeignCategory(t *testing.T) {
	router, f := newRouter(t)

	recorder, body := serve(t, router, http.MethodPost, "/api/todos/", `{"taskTitle":"Task","category":"`+f.foreign+`"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, string(body), "VALIDATION_ERROR")

	recorder, _ = serve(t, router, http.MethodPost, "/api/todos/", `{"taskTitle":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	router, f := newRouter(t)
	created := f.create(t, "Task")

	recorder, body := serve(t, router, http.MethodPut, "/api/todos/"+created.ID, `{"isCompleted":true}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated todo.Todo
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Task", updated.TaskTitle)

	recorder, _ = serve(t, router, http.MethodPut, "/api/todos/not-a-uuid", `{"isCompleted":true}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder, body = serve(t, router, http.MethodDelete, "/api/todos/"+created.ID, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, string(body), "Todo deleted successfully")

	recorder, _ = serve(t, router, http.MethodDelete, "/api/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_ReorderAcceptsBothKeys(t *testing.T) {
	router, f := newRouter(t)
	first, second := f.create(t, "one"), f.create(t, "two")

	for _, key := range []string{"tasks", "todos"} {
		t.Run(key, func(t *testing.T) {
			payload := `{"` + key + `":[{"id":"` + second.ID + `"},{"id":"` + first.ID + `"}]}`
			recorder, body := serve(t, router, http.MethodPut, "/api/todos/reorder", payload)
			require.Equal(t, http.StatusOK, recorder.Code)

			var envelope struct {
				Success bool        `json:"success"`
				Data    []todo.Todo `json:"data"`
			}
			require.NoError(t, json.Unmarshal(body, &envelope))
			require.Len(t, envelope.Data, 2)
			assert.Equal(t, second.ID, envelope.Data[0].ID)
		})
	}

	recorder, _ := serve(t, router, http.MethodPut, "/api/todos/reorder", `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
