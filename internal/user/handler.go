package handler

import (
	"net/http"

	"jsoncrud/internal/user/model"
	"jsoncrud/internal/user/service"
	"jsoncrud/pkg/response"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		response.Error(w, err, "Error fetching users")
		return
	}
	response.List(w, len(users), users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err, "Error fetching user")
		return
	}
	response.OK(w, http.StatusOK, "", user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := response.Decode(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req)
	if err != nil {
		response.Error(w, err, "Error creating user")
		return
	}
	response.OK(w, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if err := response.Decode(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		response.Error(w, err, "Error updating user")
		return
	}
	response.OK(w, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.DeleteUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err, "Error deleting user")
		return
	}
	response.OK(w, http.StatusOK, "User deleted successfully", user)
}
