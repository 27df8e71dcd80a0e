package router

import (
	"fmt"
	"net/http"

	todoHandler "jsoncrud/internal/todo"
	todoService "jsoncrud/internal/todo/service"
	userHandler "jsoncrud/internal/user"
	userService "jsoncrud/internal/user/service"
	"jsoncrud/middleware"
	"jsoncrud/pkg/response"
	"jsoncrud/socket"
	"jsoncrud/store"

	"github.com/gorilla/mux"
)

type Deps struct {
	Store      *store.Store
	Hub        *socket.Hub  // optional; enables /ws and change events
	Metrics    http.Handler // optional; served at /metrics
	JWTSecret  string       // optional; guards mutating routes
	CORSOrigin string
}

func Setup(d Deps) http.Handler {
	r := mux.NewRouter()

	var userFeed userService.Publisher
	var todoFeed todoService.Publisher
	if d.Hub != nil {
		userFeed, todoFeed = d.Hub, d.Hub
	}

	users := userHandler.NewUserHandler(userService.NewUserService(d.Store, userFeed))
	todos := todoHandler.NewTodoHandler(todoService.NewTodoService(d.Store, todoFeed))
	auth := middleware.Auth(d.JWTSecret)

	r.HandleFunc("/", describe).Methods(http.MethodGet)

	r.HandleFunc("/users", users.ListUsers).Methods(http.MethodGet)
	r.Handle("/users/add", auth(http.HandlerFunc(users.CreateUser))).Methods(http.MethodPost)
	r.Handle("/users/update/{id}", auth(http.HandlerFunc(users.UpdateUser))).Methods(http.MethodPut)
	r.Handle("/users/delete/{id}", auth(http.HandlerFunc(users.DeleteUser))).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}", users.GetUser).Methods(http.MethodGet)

	r.HandleFunc("/todos", todos.ListTodos).Methods(http.MethodGet)
	r.Handle("/todos/add", auth(http.HandlerFunc(todos.CreateTodo))).Methods(http.MethodPost)
	r.Handle("/todos/update/{id}", auth(http.HandlerFunc(todos.UpdateTodo))).Methods(http.MethodPut)
	r.Handle("/todos/delete/{id}", auth(http.HandlerFunc(todos.DeleteTodo))).Methods(http.MethodDelete)
	r.HandleFunc("/todos/{id}", todos.GetTodo).Methods(http.MethodGet)

	if d.Hub != nil {
		r.Handle("/ws", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			socket.ServeWs(d.Hub, w, r)
		}))).Methods(http.MethodGet)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	// Wrong methods answer like unknown routes.
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	origin := d.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return middleware.Logging(middleware.Recovery(middleware.CORS(origin)(r)))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.RequestURI()))
}

type description struct {
	Message   string                       `json:"message"`
	Endpoints map[string]map[string]string `json:"endpoints"`
}

func describe(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, description{
		Message: "CRUD API with JSON Database",
		Endpoints: map[string]map[string]string{
			"users": {
				"getAll":    "GET /users",
				"getSingle": "GET /users/:userId",
				"create":    "POST /users/add",
				"update":    "PUT /users/update/:userId",
				"delete":    "DELETE /users/delete/:userId",
			},
			"todos": {
				"getAll":    "GET /todos",
				"getSingle": "GET /todos/:todoId",
				"create":    "POST /todos/add",
				"update":    "PUT /todos/update/:todoId",
				"delete":    "DELETE /todos/delete/:todoId",
			},
		},
	})
}
