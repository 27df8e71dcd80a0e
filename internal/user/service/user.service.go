package service

import (
	"context"
	"fmt"

	"jsoncrud/internal/user/model"
	"jsoncrud/pkg/apperror"
	"jsoncrud/socket"
	"jsoncrud/store"
)

// Publisher receives committed mutations; *socket.Hub implements it.
type Publisher interface {
	Publish(eventType, collection, id string, record any)
}

type UserService struct {
	Store *store.Store
	Feed  Publisher
}

func NewUserService(st *store.Store, feed Publisher) *UserService {
	return &UserService{Store: st, Feed: feed}
}

func (s *UserService) ListUsers(ctx context.Context) ([]store.User, error) {
	return store.Read(ctx, s.Store, func(doc *store.Document) ([]store.User, error) {
		return doc.Users, nil
	})
}

func (s *UserService) GetUser(ctx context.Context, id string) (store.User, error) {
	return store.Read(ctx, s.Store, func(doc *store.Document) (store.User, error) {
		i := doc.UserIndex(id)
		if i < 0 {
			return store.User{}, notFound(id)
		}
		return doc.Users[i], nil
	})
}

func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (store.User, error) {
	if req.Name == "" || req.Email == "" {
		return store.User{}, apperror.Validation("Name and email are required")
	}

	user, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.User, error) {
		if doc.UserByEmail(req.Email) >= 0 {
			return store.User{}, apperror.Conflict("Email already exists")
		}
		u := store.User{
			ID:        s.Store.GenerateID(),
			Name:      req.Name,
			Email:     req.Email,
			Age:       req.Age,
			CreatedAt: s.Store.Timestamp(),
		}
		doc.Users = append(doc.Users, u)
		return u, nil
	})
	if err != nil {
		return store.User{}, err
	}

	s.publish(socket.CreatedType, user)
	return user, nil
}

// UpdateUser merges the supplied fields into the user. A changed email must
// not belong to another user.
func (s *UserService) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (store.User, error) {
	if req.Empty() {
		return store.User{}, apperror.Validation("No update data provided")
	}
	if req.Name.Set && (req.Name.Null || req.Name.Val == "") {
		return store.User{}, apperror.Validation("Name cannot be empty")
	}
	if req.Email.Set && (req.Email.Null || req.Email.Val == "") {
		return store.User{}, apperror.Validation("Email cannot be empty")
	}

	user, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.User, error) {
		i := doc.UserIndex(id)
		if i < 0 {
			return store.User{}, notFound(id)
		}
		if req.Email.Set {
			if j := doc.UserByEmail(req.Email.Val); j >= 0 && j != i {
				return store.User{}, apperror.Conflict("Email already exists")
			}
		}

		u := &doc.Users[i]
		if req.Name.Set {
			u.Name = req.Name.Val
		}
		if req.Email.Set {
			u.Email = req.Email.Val
		}
		if req.Age.Set {
			u.Age = req.Age.Ptr()
		}
		u.UpdatedAt = s.Store.Timestamp()
		return *u, nil
	})
	if err != nil {
		return store.User{}, err
	}

	s.publish(socket.UpdatedType, user)
	return user, nil
}

// DeleteUser removes the user. Todos that reference it are left untouched.
func (s *UserService) DeleteUser(ctx context.Context, id string) (store.User, error) {
	user, err := store.Update(ctx, s.Store, func(doc *store.Document) (store.User, error) {
		i := doc.UserIndex(id)
		if i < 0 {
			return store.User{}, notFound(id)
		}
		return doc.RemoveUser(i), nil
	})
	if err != nil {
		return store.User{}, err
	}

	s.publish(socket.DeletedType, user)
	return user, nil
}

func (s *UserService) publish(eventType string, user store.User) {
	if s.Feed != nil {
		s.Feed.Publish(eventType, socket.CollectionUsers, user.ID, user)
	}
}

func notFound(id string) error {
	return apperror.NotFound(fmt.Sprintf("User with ID %s not found", id))
}
