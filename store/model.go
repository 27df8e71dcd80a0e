package store

// TimeFormat is the ISO-8601 layout used for createdAt/updatedAt.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Document is the single persisted root. Both collections are always present
// in the serialised form, even when empty.
type Document struct {
	Users []User `json:"users"`
	Todos []Todo `json:"todos"`
}

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       *int   `json:"age"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Todo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	UserID      *string `json:"userId"` // non-owning reference, checked only on write
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// EmptyDocument returns {users: [], todos: []}.
func EmptyDocument() *Document {
	return &Document{Users: []User{}, Todos: []Todo{}}
}

func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Todos == nil {
		d.Todos = []Todo{}
	}
}

// UserIndex returns the position of the user with id, or -1.
func (d *Document) UserIndex(id string) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// UserByEmail returns the position of the user holding email (exact match), or -1.
func (d *Document) UserByEmail(email string) int {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return i
		}
	}
	return -1
}

// TodoIndex returns the position of the todo with id, or -1.
func (d *Document) TodoIndex(id string) int {
	for i := range d.Todos {
		if d.Todos[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveUser deletes the user at i and returns it.
func (d *Document) RemoveUser(i int) User {
	removed := d.Users[i]
	d.Users = append(d.Users[:i], d.Users[i+1:]...)
	return removed
}

// RemoveTodo deletes the todo at i and returns it.
func (d *Document) RemoveTodo(i int) Todo {
	removed := d.Todos[i]
	d.Todos = append(d.Todos[:i], d.Todos[i+1:]...)
	return removed
}
