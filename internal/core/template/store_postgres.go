// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
PostgreSQL implementation for the catalogue's data access.

It leans on Postgres features to keep the discovery experience fast and correct:
  - Window Functions: Calculates total result counts without a separate 'COUNT' query.
  - Array Operators: Uses && overlap matching on the text[] tags column.
  - Correlated Subqueries: Derives like counts and per-viewer like membership
    in the same round-trip as the row itself.
  - ACID Transactions: The like toggle and its resulting count happen atomically.
*/
package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/database/schema"
	"github.com/khanhdoan/mailfold/internal/platform/dberr"
)

// # PostgreSQL Repository

// templateRepository implements the [Repository] interface using pgx.
type templateRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed template store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &templateRepository{pool: pool}
}

// viewerParam renders a viewer placeholder as a nullable uuid expression.
//
// Anonymous requests bind "" for the viewer, which cannot be encoded into a
// uuid column directly. NULLIF turns the empty string into NULL before the
// cast, so comparisons against it are simply false.
func viewerParam(arg int) string {
	return fmt.Sprintf("NULLIF($%d, '')::uuid", arg)
}

// selectColumns builds the shared projection for template reads.
//
// The viewer placeholder index is injected by the caller so the same
// projection works in queries with differing argument layouts.
func selectColumns(viewerArg int) string {
	t := schema.CoreTemplate
	l := schema.TemplateLike
	a := schema.UserAccount
	return fmt.Sprintf(`
		t.%s, t.%s, a.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
		(SELECT COUNT(*) FROM %s l WHERE l.%s = t.%s) AS likescount,
		EXISTS(SELECT 1 FROM %s l WHERE l.%s = t.%s AND l.%s = %s) AS isliked`,
		t.ID, t.AuthorID, a.Name, t.Title, t.Slug, t.Description, t.HTMLContent,
		t.IsPublic, t.Tags, t.Views, t.CreatedAt, t.UpdatedAt,
		l.Table, l.TemplateID, t.ID,
		l.Table, l.TemplateID, t.ID, l.UserID, viewerParam(viewerArg),
	)
}

// scanTemplate hydrates a Template from a row carrying selectColumns,
// plus any trailing destinations (e.g. the window-function total).
func scanTemplate(row pgx.Row, extra ...any) (*Template, error) {
	tpl := &Template{}
	destinations := []any{
		&tpl.ID,
		&tpl.AuthorID,
		&tpl.AuthorName,
		&tpl.Title,
		&tpl.Slug,
		&tpl.Description,
		&tpl.HTMLContent,
		&tpl.IsPublic,
		&tpl.Tags,
		&tpl.Views,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
		&tpl.LikesCount,
		&tpl.IsLiked,
	}
	destinations = append(destinations, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return tpl, nil
}

/*
Create persists a new template record into the core.template table.

Parameters:
  - context: context.Context
  - tpl: *Template (Entity to persist)

Returns:
  - error: apperr.Conflict on slug collision, or connectivity errors
*/
func (repository *templateRepository) Create(context context.Context, tpl *Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.CoreTemplate.Table,
		schema.CoreTemplate.ID,
		schema.CoreTemplate.AuthorID,
		schema.CoreTemplate.Title,
		schema.CoreTemplate.Slug,
		schema.CoreTemplate.Description,
		schema.CoreTemplate.HTMLContent,
		schema.CoreTemplate.IsPublic,
		schema.CoreTemplate.Tags,
		schema.CoreTemplate.Views,
		schema.CoreTemplate.CreatedAt,
		schema.CoreTemplate.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		tpl.ID,
		tpl.AuthorID,
		tpl.Title,
		tpl.Slug,
		tpl.Description,
		tpl.HTMLContent,
		tpl.IsPublic,
		tpl.Tags,
		tpl.Views,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_template_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a template by its primary key, restricted to rows visible
to the viewer.

Description: Invisible rows (private templates of other authors) produce the
same apperr.NotFound as truly absent rows, so existence is never leaked.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)
  - viewerID: string (empty for anonymous)

Returns:
  - *Template: Hydrated entity with computed metrics
  - error: apperr.NotFound or execution errors
*/
func (repository *templateRepository) FindByID(context context.Context, id, viewerID string) (*Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		JOIN %s a ON a.%s = t.%s
		WHERE t.%s = $1 AND (t.%s = TRUE OR t.%s = %s)`,
		selectColumns(2),
		schema.CoreTemplate.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreTemplate.AuthorID,
		schema.CoreTemplate.ID,
		schema.CoreTemplate.IsPublic,
		schema.CoreTemplate.AuthorID, viewerParam(2),
	)

	tpl, err := scanTemplate(repository.pool.QueryRow(context, query, id, viewerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Template")
		}
		return nil, fmt.Errorf("postgres_template_repo_find_by_id_failed: %w", err)
	}

	return tpl, nil
}

/*
FindBySlug retrieves a template by its unique slug, restricted to rows visible
to the viewer.

Parameters:
  - context: context.Context
  - slug: string
  - viewerID: string (empty for anonymous)

Returns:
  - *Template: Hydrated entity with computed metrics
  - error: apperr.NotFound or execution errors
*/
func (repository *templateRepository) FindBySlug(context context.Context, slug, viewerID string) (*Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		JOIN %s a ON a.%s = t.%s
		WHERE t.%s = $1 AND (t.%s = TRUE OR t.%s = %s)`,
		selectColumns(2),
		schema.CoreTemplate.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreTemplate.AuthorID,
		schema.CoreTemplate.Slug,
		schema.CoreTemplate.IsPublic,
		schema.CoreTemplate.AuthorID, viewerParam(2),
	)

	tpl, err := scanTemplate(repository.pool.QueryRow(context, query, slug, viewerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Template")
		}
		return nil, fmt.Errorf("postgres_template_repo_find_by_slug_failed: %w", err)
	}

	return tpl, nil
}

/*
List returns a filtered, paginated slice of public templates and the total count.

Description: The general catalogue only ever contains public templates; the
viewer argument feeds the per-viewer isliked projection, never the row set.
Private drafts are served exclusively through [templateRepository.ListByAuthor].
Uses COUNT(*) OVER() to retrieve total record counts without a second query.
Tag filtering uses the && array-overlap operator against the text[] tags
column, backed by a GIN index.

Parameters:
  - context: context.Context
  - filter: Filter (Search, tags, author, sorting)
  - viewerID: string (empty for anonymous)
  - limit: int
  - offset: int

Returns:
  - []*Template: Slice of hydrated entities
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *templateRepository) List(context context.Context, filter Filter, viewerID string, limit, offset int) ([]*Template, int, error) {

	// Query build initialization. $1 is always the viewer, consumed only by
	// the isliked projection.
	var queryBuilder strings.Builder
	args := []any{viewerID}
	argID := 2

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s t
		JOIN %s a ON a.%s = t.%s
		WHERE t.%s = TRUE`,
		selectColumns(1),
		schema.CoreTemplate.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreTemplate.AuthorID,
		schema.CoreTemplate.IsPublic,
	))

	// Search Query Filtering (title and description, case-insensitive)
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (t.%s ILIKE $%d OR t.%s ILIKE $%d)",
			schema.CoreTemplate.Title, argID, schema.CoreTemplate.Description, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Tag Filtering (overlap: any shared tag qualifies)
	if len(filter.Tags) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s && $%d::text[]", schema.CoreTemplate.Tags, argID))
		args = append(args, filter.Tags)
		argID++
	}

	// Author Filtering
	if filter.AuthorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTemplate.AuthorID, argID))
		args = append(args, filter.AuthorID)
		argID++
	}

	// Apply Sorting Logic
	sort := fmt.Sprintf("t.%s", schema.CoreTemplate.CreatedAt) // default: latest
	switch filter.Sort {
	// Popularity by view count
	case "popular":
		sort = fmt.Sprintf("t.%s", schema.CoreTemplate.Views)
	// Engagement by like count
	case "likes":
		sort = "likescount"
	// Latest
	case "latest":
		sort = fmt.Sprintf("t.%s", schema.CoreTemplate.CreatedAt)
	}

	// Stable ordering: ID tiebreak keeps pagination deterministic.
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC, t.%s DESC", sort, schema.CoreTemplate.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query Execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_template_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	var totalCount int

	// Iterate over rows
	for rows.Next() {
		tpl, err := scanTemplate(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_template_repo_scan_failed: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, totalCount, nil
}

/*
ListByAuthor returns every template of an author, private drafts included.

Description: This is the storage behind the owner's personal collection, so no
visibility restriction applies. Callers must gate access to the owner.

Parameters:
  - context: context.Context
  - authorID: string
  - limit: int
  - offset: int

Returns:
  - []*Template: Slice of hydrated entities, newest first
  - int: Total count
  - error: Database execution errors
*/
func (repository *templateRepository) ListByAuthor(context context.Context, authorID string, limit, offset int) ([]*Template, int, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s t
		JOIN %s a ON a.%s = t.%s
		WHERE t.%s = %s
		ORDER BY t.%s DESC, t.%s DESC
		LIMIT $2 OFFSET $3`,
		selectColumns(1),
		schema.CoreTemplate.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreTemplate.AuthorID,
		schema.CoreTemplate.AuthorID, viewerParam(1),
		schema.CoreTemplate.CreatedAt,
		schema.CoreTemplate.ID,
	)

	rows, err := repository.pool.Query(context, query, authorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_template_repo_list_by_author_failed: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	var totalCount int

	for rows.Next() {
		tpl, err := scanTemplate(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_template_repo_scan_failed: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, totalCount, nil
}

/*
ListLikedBy returns the visible templates a user has liked, newest like first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []*Template: Slice of hydrated entities
  - int: Total count
  - error: Database execution errors
*/
func (repository *templateRepository) ListLikedBy(context context.Context, userID string, limit, offset int) ([]*Template, int, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s t
		JOIN %s a ON a.%s = t.%s
		JOIN %s my ON my.%s = t.%s AND my.%s = %s
		WHERE (t.%s = TRUE OR t.%s = %s)
		ORDER BY my.%s DESC, t.%s DESC
		LIMIT $2 OFFSET $3`,
		selectColumns(1),
		schema.CoreTemplate.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreTemplate.AuthorID,
		schema.TemplateLike.Table, schema.TemplateLike.TemplateID, schema.CoreTemplate.ID, schema.TemplateLike.UserID, viewerParam(1),
		schema.CoreTemplate.IsPublic,
		schema.CoreTemplate.AuthorID, viewerParam(1),
		schema.CoreTemplate.CreatedAt,
		schema.CoreTemplate.ID,
	)

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_template_repo_list_liked_failed: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	var totalCount int

	for rows.Next() {
		tpl, err := scanTemplate(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_template_repo_scan_failed: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, totalCount, nil
}

/*
Update persists changes to a template's mutable fields.

Description: The slug is immutable after publication, so it is deliberately
absent from the SET clause.

Parameters:
  - context: context.Context
  - tpl: *Template

Returns:
  - error: Update failures
*/
func (repository *templateRepository) Update(context context.Context, tpl *Template) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1`,
		schema.CoreTemplate.Table,
		schema.CoreTemplate.Title,
		schema.CoreTemplate.Description,
		schema.CoreTemplate.HTMLContent,
		schema.CoreTemplate.IsPublic,
		schema.CoreTemplate.Tags,
		schema.CoreTemplate.UpdatedAt,
		schema.CoreTemplate.ID,
	)

	_, err := repository.pool.Exec(context, query,
		tpl.ID,
		tpl.Title,
		tpl.Description,
		tpl.HTMLContent,
		tpl.IsPublic,
		tpl.Tags,
		tpl.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_template_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete permanently removes a template.

Description: Like relations are removed by the ON DELETE CASCADE constraint
on core.templatelike.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Deletion failures
*/
func (repository *templateRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.CoreTemplate.Table, schema.CoreTemplate.ID)

	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_template_repo_delete_failed: %w", err)
	}

	return nil
}

/*
SlugExists reports whether a slug is already taken.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - bool: true if a template with this slug exists
  - error: Retrieval failures
*/
func (repository *templateRepository) SlugExists(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)",
		schema.CoreTemplate.Table, schema.CoreTemplate.Slug)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_template_repo_slug_exists_failed: %w", err)
	}

	return exists, nil
}

/*
ToggleLike atomically flips the user's like on a template.

Description: Runs inside a single transaction:
 1. DELETE the like row; if nothing was deleted, INSERT it instead.
 2. COUNT(*) the remaining likes for the template.

The toggle and the resulting count therefore observe the same snapshot, and
two concurrent toggles by the same user settle into exactly one of the two
valid states instead of producing duplicate rows.

Parameters:
  - context: context.Context
  - templateID: string
  - userID: string

Returns:
  - LikeResult: Post-toggle membership and count
  - error: Transaction failures
*/
func (repository *templateRepository) ToggleLike(context context.Context, templateID, userID string) (LikeResult, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return LikeResult{}, fmt.Errorf("postgres_template_repo_toggle_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		schema.TemplateLike.Table, schema.TemplateLike.TemplateID, schema.TemplateLike.UserID)

	commandTag, err := transaction.Exec(context, deleteQuery, templateID, userID)
	if err != nil {
		return LikeResult{}, fmt.Errorf("postgres_template_repo_toggle_delete_failed: %w", err)
	}

	result := LikeResult{}

	// Nothing deleted means the like was absent: this toggle adds it.
	if commandTag.RowsAffected() == 0 {
		insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())",
			schema.TemplateLike.Table, schema.TemplateLike.TemplateID, schema.TemplateLike.UserID,
			schema.TemplateLike.CreatedAt)

		if _, err := transaction.Exec(context, insertQuery, templateID, userID); err != nil {
			return LikeResult{}, dberr.Wrap(err, "postgres_template_repo_toggle_insert_failed")
		}
		result.IsLiked = true
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1",
		schema.TemplateLike.Table, schema.TemplateLike.TemplateID)

	if err := transaction.QueryRow(context, countQuery, templateID).Scan(&result.LikesCount); err != nil {
		return LikeResult{}, fmt.Errorf("postgres_template_repo_toggle_count_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return LikeResult{}, fmt.Errorf("postgres_template_repo_toggle_commit_failed: %w", err)
	}

	return result, nil
}

/*
IncrementViews bumps the view counter with a single atomic update.

Description: UPDATE views = views + 1 is race-free under concurrent fetches;
no read-modify-write round-trip is involved.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *templateRepository) IncrementViews(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s = $1",
		schema.CoreTemplate.Table,
		schema.CoreTemplate.Views, schema.CoreTemplate.Views,
		schema.CoreTemplate.ID,
	)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres_template_repo_increment_views_failed: %w", err)
	}

	return nil
}
