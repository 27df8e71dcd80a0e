package model

import "jsoncrud/pkg/optional"

type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	UserID      *string `json:"userId"`
	Completed   bool    `json:"completed"`
}

// UpdateTodoRequest is a partial update; see the user equivalent.
type UpdateTodoRequest struct {
	Title       optional.Value[string] `json:"title"`
	Description optional.Value[string] `json:"description"`
	UserID      optional.Value[string] `json:"userId"`
	Completed   optional.Value[bool]   `json:"completed"`
}

func (r UpdateTodoRequest) Empty() bool {
	return !r.Title.Set && !r.Description.Set && !r.UserID.Set && !r.Completed.Set
}
