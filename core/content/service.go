package content

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("not found")

	NowFunc = time.Now // mockable
)

type (
	ServiceInterface interface {
		CreateArticle(ctx context.Context, na NewArticle) (Article, error)
		QueryArticles(ctx context.Context, filter QueryFilter) ([]Article, error)
		GetArticle(ctx context.Context, id int) (Article, error)
		UpdateArticle(ctx context.Context, id int, ua UpdateArticle) (Article, error)
		DeleteArticle(ctx context.Context, id int) error

		CreateFAQ(ctx context.Context, nf NewFAQ) (FAQ, error)
		QueryFAQs(ctx context.Context, filter QueryFilter) ([]FAQ, error)
		UpdateFAQ(ctx context.Context, id int, uf UpdateFAQ) (FAQ, error)
		DeleteFAQ(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// CreateArticle publishes an article, filling unset fields with defaults.
func (svc *service) CreateArticle(ctx context.Context, na NewArticle) (Article, error) {
	art := Article{
		Title:    na.Title,
		Excerpt:  na.Excerpt,
		Content:  na.Content,
		Category: na.Category,
		Author:   na.Author,
		ReadTime: na.ReadTime,
		ImageURL: na.ImageURL,
	}
	if art.Category == "" {
		art.Category = DefaultCategory
	}
	if art.Author == "" {
		art.Author = DefaultAuthor
	}
	if art.ReadTime == 0 {
		art.ReadTime = DefaultReadTime
	}
	if na.PublishedAt != nil {
		art.PublishedAt = na.PublishedAt.UTC()
	} else {
		art.PublishedAt = NowFunc().UTC()
	}

	art, err := svc.repo.CreateArticle(ctx, art)
	return art, errors.Wrap(err, "creating article")
}

func (svc *service) QueryArticles(ctx context.Context, filter QueryFilter) ([]Article, error) {
	filter.Clean()
	arts, err := svc.repo.QueryArticles(ctx, filter)
	return arts, errors.Wrap(err, "querying articles")
}

func (svc *service) GetArticle(ctx context.Context, id int) (Article, error) {
	return svc.repo.GetArticleByID(ctx, id)
}

// UpdateArticle merges the provided fields into the stored article.
func (svc *service) UpdateArticle(ctx context.Context, id int, ua UpdateArticle) (Article, error) {
	art, err := svc.repo.GetArticleByID(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if ua.Title != "" {
		art.Title = ua.Title
	}
	if ua.Excerpt != "" {
		art.Excerpt = ua.Excerpt
	}
	if ua.Content != "" {
		art.Content = ua.Content
	}
	if ua.Category != "" {
		art.Category = ua.Category
	}
	if ua.Author != "" {
		art.Author = ua.Author
	}
	if ua.ReadTime != 0 {
		art.ReadTime = ua.ReadTime
	}
	if ua.ImageURL != "" {
		art.ImageURL = ua.ImageURL
	}
	if ua.PublishedAt != nil {
		art.PublishedAt = ua.PublishedAt.UTC()
	}

	art, err = svc.repo.UpdateArticle(ctx, art)
	return art, errors.Wrap(err, "updating article")
}

func (svc *service) DeleteArticle(ctx context.Context, id int) error {
	return svc.repo.DeleteArticle(ctx, id)
}

func (svc *service) CreateFAQ(ctx context.Context, nf NewFAQ) (FAQ, error) {
	faq := FAQ{
		Question: nf.Question,
		Answer:   nf.Answer,
		Category: nf.Category,
	}
	if faq.Category == "" {
		faq.Category = DefaultCategory
	}
	faq, err := svc.repo.CreateFAQ(ctx, faq)
	return faq, errors.Wrap(err, "creating faq")
}

func (svc *service) QueryFAQs(ctx context.Context, filter QueryFilter) ([]FAQ, error) {
	filter.Clean()
	faqs, err := svc.repo.QueryFAQs(ctx, filter)
	return faqs, errors.Wrap(err, "querying faqs")
}

// UpdateFAQ merges the provided fields into the stored FAQ.
func (svc *service) UpdateFAQ(ctx context.Context, id int, uf UpdateFAQ) (FAQ, error) {
	faq, err := svc.repo.GetFAQByID(ctx, id)
	if err != nil {
		return FAQ{}, err
	}
	if uf.Question != "" {
		faq.Question = uf.Question
	}
	if uf.Answer != "" {
		faq.Answer = uf.Answer
	}
	if uf.Category != "" {
		faq.Category = uf.Category
	}
	faq, err = svc.repo.UpdateFAQ(ctx, faq)
	return faq, errors.Wrap(err, "updating faq")
}

func (svc *service) DeleteFAQ(ctx context.Context, id int) error {
	return svc.repo.DeleteFAQ(ctx, id)
}
