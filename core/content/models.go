package content

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tawaslapp/tawasl/core"
)

// defaults filled in when an article is created without them
const (
	DefaultCategory = "General"
	DefaultAuthor   = "Unknown"
	DefaultReadTime = 1
)

type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"` // UTC
	ReadTime    int       `json:"readTime"`    // minutes
	ImageURL    string    `json:"imageUrl,omitempty"`
}

type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// NewArticle contains information needed to publish an Article.
// Category, author, readTime and publishedAt fall back to defaults.
type NewArticle struct {
	Title       string     `json:"title" validate:"required,min=3"`
	Excerpt     string     `json:"excerpt" validate:"required,min=10"`
	Content     string     `json:"content" validate:"required,min=20"`
	Category    string     `json:"category" validate:"omitempty"`
	Author      string     `json:"author" validate:"omitempty"`
	ReadTime    int        `json:"readTime" validate:"omitempty,min=1"`
	ImageURL    string     `json:"imageUrl" validate:"omitempty,url"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (na *NewArticle) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Excerpt = core.CleanString(na.Excerpt)
	na.Content = core.CleanString(na.Content)
	na.Category = core.CleanString(na.Category)
	na.Author = core.CleanString(na.Author)
	na.ImageURL = core.CleanString(na.ImageURL)
	return validate.Struct(na)
}

// UpdateArticle defines what may be changed on an existing Article;
// zero-valued fields are left untouched.
type UpdateArticle struct {
	Title       string     `json:"title" validate:"omitempty,min=3"`
	Excerpt     string     `json:"excerpt" validate:"omitempty,min=10"`
	Content     string     `json:"content" validate:"omitempty,min=20"`
	Category    string     `json:"category"`
	Author      string     `json:"author"`
	ReadTime    int        `json:"readTime" validate:"omitempty,min=1"`
	ImageURL    string     `json:"imageUrl" validate:"omitempty,url"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (ua *UpdateArticle) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Excerpt = core.CleanString(ua.Excerpt)
	ua.Content = core.CleanString(ua.Content)
	ua.Category = core.CleanString(ua.Category)
	ua.Author = core.CleanString(ua.Author)
	ua.ImageURL = core.CleanString(ua.ImageURL)
	return validate.Struct(ua)
}

// NewFAQ contains information needed to create a FAQ entry.
type NewFAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Category string `json:"category"`
}

func (nf *NewFAQ) Validate(validate *validator.Validate) error {
	nf.Question = core.CleanString(nf.Question)
	nf.Answer = core.CleanString(nf.Answer)
	nf.Category = core.CleanString(nf.Category)
	return validate.Struct(nf)
}

// UpdateFAQ defines what may be changed on an existing FAQ;
// zero-valued fields are left untouched.
type UpdateFAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func (uf *UpdateFAQ) Validate(validate *validator.Validate) error {
	uf.Question = core.CleanString(uf.Question)
	uf.Answer = core.CleanString(uf.Answer)
	uf.Category = core.CleanString(uf.Category)
	return validate.Struct(uf)
}

type (
	// QueryFilter applies AND on available fields. Search does a
	// case-insensitive substring match on Article.Title / FAQ.Question;
	// Category is an exact match.
	QueryFilter struct {
		Search   string `query:"search"`
		Category string `query:"category"`
	}

	Repository interface {
		CreateArticle(ctx context.Context, art Article) (Article, error)
		// QueryArticles returns matches newest-first by publish time.
		QueryArticles(ctx context.Context, filter QueryFilter) ([]Article, error)
		GetArticleByID(ctx context.Context, id int) (Article, error)
		UpdateArticle(ctx context.Context, art Article) (Article, error)
		DeleteArticle(ctx context.Context, id int) error

		CreateFAQ(ctx context.Context, faq FAQ) (FAQ, error)
		// QueryFAQs returns matches in insertion order.
		QueryFAQs(ctx context.Context, filter QueryFilter) ([]FAQ, error)
		GetFAQByID(ctx context.Context, id int) (FAQ, error)
		UpdateFAQ(ctx context.Context, faq FAQ) (FAQ, error)
		DeleteFAQ(ctx context.Context, id int) error
	}
)

// Clean normalizes the filter. The frontend category dropdowns send
// "All Categories" (articles) or "All Topics" (FAQs) when nothing is
// selected; both mean no category filter.
func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	if qf.Category == "All Categories" || qf.Category == "All Topics" {
		qf.Category = ""
	}
}
