package model

import "jsoncrud/pkg/optional"

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

// UpdateUserRequest is a partial update. id, createdAt, updatedAt and unknown
// keys are not fields here, so they are dropped while decoding.
type UpdateUserRequest struct {
	Name  optional.Value[string] `json:"name"`
	Email optional.Value[string] `json:"email"`
	Age   optional.Value[int]    `json:"age"`
}

func (r UpdateUserRequest) Empty() bool {
	return !r.Name.Set && !r.Email.Set && !r.Age.Set
}
