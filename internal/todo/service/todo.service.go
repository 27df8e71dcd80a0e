package service

import (
	"context"
	"fmt"

	"jsoncrud/internal/todo/model"
	"jsoncrud/pkg/apperror"
	"jsoncrud/socket"
	"jsoncrud/store"
)

type Publisher interface {
	Publish(eventType, collection, id string, record any)
}

type TodoService struct {
	Store *store.Store
	Feed  Publisher
}

func NewTodoService(st *store.Store, feed Publisher) *TodoService {
	return &TodoService{Store: st, Feed: feed}
}

func (s *TodoService) ListTodos(ctx context.Context) ([]store.Todo, error) {
	return store.Read(ctx, s.Store, func(doc *store.Document) ([]store.Todo, error) {
		return doc.Todos, nil
	})
}

func (s *TodoService) GetTodo(ctx context.Context, id string) (store.Todo, error) {
	return store.Read(ctx, s.Store, func(doc *store.Document) (store.Todo, error) {
		i := doc.TodoIndex(id)
		if i < 0 {
			return store.Todo{}, notFound(id)
		}
		return doc.Todos[i], nil
	})
}

// CreateTodo appends a todo. A non-empty userId must name an existing user;
// an empty one is stored as null.
func (s *TodoService) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (store.Todo, error) {
	if req.Title == "" {
		return store.Todo{}, apperror.Validation("Title is required")
	}
	userID := req.UserID
	if userID != nil && *userID == "" {
		userID = nil
	}

	todo, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.Todo, error) {
		if userID != nil && doc.UserIndex(*userID) < 0 {
			return store.Todo{}, userNotFound(*userID)
		}
		t := store.Todo{
			ID:          s.Store.GenerateID(),
			Title:       req.Title,
			Description: req.Description,
			UserID:      userID,
			Completed:   req.Completed,
			CreatedAt:   s.Store.Timestamp(),
		}
		doc.Todos = append(doc.Todos, t)
		return t, nil
	})
	if err != nil {
		return store.Todo{}, err
	}

	s.publish(socket.CreatedType, todo)
	return todo, nil
}

// UpdateTodo merges the supplied fields into the todo. A userId that changes
// to a non-null value must name an existing user.
func (s *TodoService) UpdateTodo(ctx context.Context, id string, req model.UpdateTodoRequest) (store.Todo, error) {
	if req.Empty() {
		return store.Todo{}, apperror.Validation("No update data provided")
	}
	if req.Title.Set && (req.Title.Null || req.Title.Val == "") {
		return store.Todo{}, apperror.Validation("Title cannot be empty")
	}
	if req.Completed.Set && req.Completed.Null {
		return store.Todo{}, apperror.Validation("Completed must be true or false")
	}

	todo, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.Todo, error) {
		i := doc.TodoIndex(id)
		if i < 0 {
			return store.Todo{}, notFound(id)
		}

		t := &doc.Todos[i]
		if req.UserID.Set {
			userID := req.UserID.Ptr()
			if userID != nil && *userID == "" {
				userID = nil
			}
			if userID != nil && !sameRef(t.UserID, userID) && doc.UserIndex(*userID) < 0 {
				return store.Todo{}, userNotFound(*userID)
			}
			t.UserID = userID
		}
		if req.Title.Set {
			t.Title = req.Title.Val
		}
		if req.Description.Set {
			t.Description = req.Description.Val
		}
		if req.Completed.Set {
			t.Completed = req.Completed.Val
		}
		t.UpdatedAt = s.Store.Timestamp()
		return *t, nil
	})
	if err != nil {
		return store.Todo{}, err
	}

	s.publish(socket.UpdatedType, todo)
	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id string) (store.Todo, error) {
	todo, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.Todo, error) {
		i := doc.TodoIndex(id)
		if i < 0 {
			return store.Todo{}, notFound(id)
		}
		return doc.RemoveTodo(i), nil
	})
	if err != nil {
		return store.Todo{}, err
	}

	s.publish(socket.DeletedType, todo)
	return todo, nil
}

func (s *TodoService) publish(eventType string, todo store.Todo) {
	if s.Feed != nil {
		s.Feed.Publish(eventType, socket.CollectionTodos, todo.ID, todo)
	}
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func notFound(id string) error {
	return apperror.NotFound(fmt.Sprintf("Todo with ID %s not found", id))
}

func userNotFound(id string) error {
	return apperror.NotFound(fmt.Sprintf("User with ID %s not found", id))
}
