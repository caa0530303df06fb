package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tawaslapp/tawasl/core/content"
)

type articleRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Excerpt     string      `db:"excerpt"`
	Content     string      `db:"content"`
	Category    string      `db:"category"`
	Author      string      `db:"author"`
	PublishedAt time.Time   `db:"published_at"`
	ReadTime    int         `db:"read_time"`
	ImageURL    null.String `db:"image_url"`
}

func (r articleRow) article() content.Article {
	return content.Article{
		ID:          r.ID,
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Category:    r.Category,
		Author:      r.Author,
		PublishedAt: r.PublishedAt,
		ReadTime:    r.ReadTime,
		ImageURL:    r.ImageURL.String,
	}
}

type faqRow struct {
	ID       int    `db:"id"`
	Question string `db:"question"`
	Answer   string `db:"answer"`
	Category string `db:"category"`
}

func (r faqRow) faq() content.FAQ {
	return content.FAQ{
		ID:       r.ID,
		Question: r.Question,
		Answer:   r.Answer,
		Category: r.Category,
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to content.ErrNotFound
func (repo contentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return content.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo contentRepository) CreateArticle(ctx context.Context, art content.Article) (content.Article, error) {
	query := `
		INSERT INTO articles (title, excerpt, content, category, author, published_at, read_time, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		art.Title, art.Excerpt, art.Content, art.Category, art.Author,
		art.PublishedAt.UTC(), art.ReadTime, null.NewString(art.ImageURL, art.ImageURL != ""),
	).Scan(&art.ID)
	if err != nil {
		return content.Article{}, errors.Wrap(err, "inserting article")
	}
	return art, nil
}

func (repo contentRepository) QueryArticles(ctx context.Context, filter content.QueryFilter) ([]content.Article, error) {
	query := "SELECT * FROM articles"
	var conds []string
	var args []interface{}
	if filter.Search != "" {
		conds = append(conds, "title ILIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY published_at DESC"

	var rows []articleRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying articles")
	}
	arts := make([]content.Article, 0, len(rows))
	for _, row := range rows {
		arts = append(arts, row.article())
	}
	return arts, nil
}

func (repo contentRepository) GetArticleByID(ctx context.Context, id int) (content.Article, error) {
	var row articleRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM articles WHERE id = $1", id); err != nil {
		return content.Article{}, repo.trapNoRowsErr(err, "finding article")
	}
	return row.article(), nil
}

func (repo contentRepository) UpdateArticle(ctx context.Context, art content.Article) (content.Article, error) {
	query := `
		UPDATE articles
		SET title = $2, excerpt = $3, content = $4, category = $5, author = $6,
			published_at = $7, read_time = $8, image_url = $9
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		art.ID, art.Title, art.Excerpt, art.Content, art.Category, art.Author,
		art.PublishedAt.UTC(), art.ReadTime, null.NewString(art.ImageURL, art.ImageURL != ""),
	)
	if err != nil {
		return content.Article{}, errors.Wrap(err, "updating article")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Article{}, content.ErrNotFound
	}
	return art, nil
}

func (repo contentRepository) DeleteArticle(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting article")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (repo contentRepository) CreateFAQ(ctx context.Context, faq content.FAQ) (content.FAQ, error) {
	query := "INSERT INTO faqs (question, answer, category) VALUES ($1, $2, $3) RETURNING id"
	err := repo.db.QueryRowContext(ctx, query, faq.Question, faq.Answer, faq.Category).Scan(&faq.ID)
	if err != nil {
		return content.FAQ{}, errors.Wrap(err, "inserting faq")
	}
	return faq, nil
}

func (repo contentRepository) QueryFAQs(ctx context.Context, filter content.QueryFilter) ([]content.FAQ, error) {
	query := "SELECT * FROM faqs"
	var conds []string
	var args []interface{}
	if filter.Search != "" {
		conds = append(conds, "question ILIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	var rows []faqRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying faqs")
	}
	faqs := make([]content.FAQ, 0, len(rows))
	for _, row := range rows {
		faqs = append(faqs, row.faq())
	}
	return faqs, nil
}

func (repo contentRepository) GetFAQByID(ctx context.Context, id int) (content.FAQ, error) {
	var row faqRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM faqs WHERE id = $1", id); err != nil {
		return content.FAQ{}, repo.trapNoRowsErr(err, "finding faq")
	}
	return row.faq(), nil
}

func (repo contentRepository) UpdateFAQ(ctx context.Context, faq content.FAQ) (content.FAQ, error) {
	query := "UPDATE faqs SET question = $2, answer = $3, category = $4 WHERE id = $1"
	res, err := repo.db.ExecContext(ctx, query, faq.ID, faq.Question, faq.Answer, faq.Category)
	if err != nil {
		return content.FAQ{}, errors.Wrap(err, "updating faq")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.FAQ{}, content.ErrNotFound
	}
	return faq, nil
}

func (repo contentRepository) DeleteFAQ(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM faqs WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting faq")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.ErrNotFound
	}
	return nil
}
