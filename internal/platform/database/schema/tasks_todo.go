package schema

// TaskTodoTable represents the 'tasks.todos' table
type TaskTodoTable struct {
	Table       string
	ID          string
	UserID      string
	CategoryID  string
	Title       string
	SubTasks    string
	IsCompleted string
	Position    string
	CreatedAt   string
	UpdatedAt   string
}

// TaskTodo is the schema definition for tasks.todos
var TaskTodo = TaskTodoTable{
	Table:       "tasks.todos",
	ID:          "id",
	UserID:      "userid",
	CategoryID:  "categoryid",
	Title:       "title",
	SubTasks:    "subtasks",
	IsCompleted: "iscompleted",
	Position:    "position",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t TaskTodoTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.CategoryID, t.Title, t.SubTasks, t.IsCompleted, t.Position, t.CreatedAt, t.UpdatedAt,
	}
}
