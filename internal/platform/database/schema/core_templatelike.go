package schema

// TemplateLikeTable represents the 'core.templatelike' table
type TemplateLikeTable struct {
	Table      string
	TemplateID string
	UserID     string
	CreatedAt  string
}

// TemplateLike is the schema definition for core.templatelike
var TemplateLike = TemplateLikeTable{
	Table:      "core.templatelike",
	TemplateID: "templateid",
	UserID:     "userid",
	CreatedAt:  "createdat",
}
