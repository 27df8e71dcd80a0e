package handler

import (
	"net/http"

	"jsoncrud/internal/todo/model"
	"jsoncrud/internal/todo/service"
	"jsoncrud/pkg/response"

	"github.com/gorilla/mux"
)

type TodoHandler struct {
	Service *service.TodoService
}

func NewTodoHandler(service *service.TodoService) *TodoHandler {
	return &TodoHandler{Service: service}
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.Service.ListTodos(r.Context())
	if err != nil {
		response.Error(w, err, "Error fetching todos")
		return
	}
	response.List(w, len(todos), todos)
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.Service.GetTodo(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err, "Error fetching todo")
		return
	}
	response.OK(w, http.StatusOK, "", todo)
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTodoRequest
	if err := response.Decode(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.Service.CreateTodo(r.Context(), req)
	if err != nil {
		response.Error(w, err, "Error creating todo")
		return
	}
	response.OK(w, http.StatusCreated, "Todo created successfully", todo)
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTodoRequest
	if err := response.Decode(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.Service.UpdateTodo(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		response.Error(w, err, "Error updating todo")
		return
	}
	response.OK(w, http.StatusOK, "Todo updated successfully", todo)
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.Service.DeleteTodo(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err, "Error deleting todo")
		return
	}
	response.OK(w, http.StatusOK, "Todo deleted successfully", todo)
}
