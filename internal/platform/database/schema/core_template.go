package schema

// CoreTemplateTable represents the 'core.template' table
type CoreTemplateTable struct {
	Table       string
	ID          string
	AuthorID    string
	Title       string
	Slug        string
	Description string
	HTMLContent string
	IsPublic    string
	Tags        string
	Views       string
	CreatedAt   string
	UpdatedAt   string
}

// CoreTemplate is the schema definition for core.template
var CoreTemplate = CoreTemplateTable{
	Table:       "core.template",
	ID:          "id",
	AuthorID:    "authorid",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	HTMLContent: "htmlcontent",
	IsPublic:    "ispublic",
	Tags:        "tags",
	Views:       "views",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CoreTemplateTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.Title, t.Slug, t.Description, t.HTMLContent,
		t.IsPublic, t.Tags, t.Views, t.CreatedAt, t.UpdatedAt,
	}
}
