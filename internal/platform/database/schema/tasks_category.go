package schema

// TaskCategoryTable represents the 'tasks.categories' table
type TaskCategoryTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	Color     string
	Position  string
	CreatedAt string
	UpdatedAt string
}

// TaskCategory is the schema definition for tasks.categories
var TaskCategory = TaskCategoryTable{
	Table:     "tasks.categories",
	ID:        "id",
	UserID:    "userid",
	Name:      "name",
	Color:     "color",
	Position:  "position",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t TaskCategoryTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Name, t.Color, t.Position, t.CreatedAt, t.UpdatedAt,
	}
}
