package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/tawaslapp/tawasl/core/content"
)

type contentRepository struct {
	articles *articleTable
	faqs     *faqTable
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{articles: db.article, faqs: db.faq}
}

func matchesFilter(title, category string, filter content.QueryFilter) bool {
	if filter.Search != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(filter.Search)) {
		return false
	}
	if filter.Category != "" && category != filter.Category {
		return false
	}
	return true
}

func (repo *contentRepository) CreateArticle(ctx context.Context, art content.Article) (content.Article, error) {
	repo.articles.Lock()
	defer repo.articles.Unlock()

	repo.articles.pkCount++
	art.ID = repo.articles.pkCount
	repo.articles.table[art.ID] = &art
	return art, nil
}

func (repo *contentRepository) QueryArticles(ctx context.Context, filter content.QueryFilter) ([]content.Article, error) {
	repo.articles.RLock()
	defer repo.articles.RUnlock()

	arts := make([]content.Article, 0, len(repo.articles.table))
	for _, art := range repo.articles.table {
		if matchesFilter(art.Title, art.Category, filter) {
			arts = append(arts, *art)
		}
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].PublishedAt.After(arts[j].PublishedAt) })
	return arts, nil
}

func (repo *contentRepository) GetArticleByID(ctx context.Context, id int) (content.Article, error) {
	repo.articles.RLock()
	defer repo.articles.RUnlock()

	if art, ok := repo.articles.table[id]; ok {
		return *art, nil
	}
	return content.Article{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateArticle(ctx context.Context, art content.Article) (content.Article, error) {
	repo.articles.Lock()
	defer repo.articles.Unlock()

	if _, ok := repo.articles.table[art.ID]; !ok {
		return content.Article{}, content.ErrNotFound
	}
	repo.articles.table[art.ID] = &art
	return art, nil
}

func (repo *contentRepository) DeleteArticle(ctx context.Context, id int) error {
	repo.articles.Lock()
	defer repo.articles.Unlock()

	if _, ok := repo.articles.table[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.articles.table, id)
	return nil
}

func (repo *contentRepository) CreateFAQ(ctx context.Context, faq content.FAQ) (content.FAQ, error) {
	repo.faqs.Lock()
	defer repo.faqs.Unlock()

	repo.faqs.pkCount++
	faq.ID = repo.faqs.pkCount
	repo.faqs.table[faq.ID] = &faq
	return faq, nil
}

func (repo *contentRepository) QueryFAQs(ctx context.Context, filter content.QueryFilter) ([]content.FAQ, error) {
	repo.faqs.RLock()
	defer repo.faqs.RUnlock()

	faqs := make([]content.FAQ, 0, len(repo.faqs.table))
	for _, faq := range repo.faqs.table {
		if matchesFilter(faq.Question, faq.Category, filter) {
			faqs = append(faqs, *faq)
		}
	}
	sort.Slice(faqs, func(i, j int) bool { return faqs[i].ID < faqs[j].ID })
	return faqs, nil
}

func (repo *contentRepository) GetFAQByID(ctx context.Context, id int) (content.FAQ, error) {
	repo.faqs.RLock()
	defer repo.faqs.RUnlock()

	if faq, ok := repo.faqs.table[id]; ok {
		return *faq, nil
	}
	return content.FAQ{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateFAQ(ctx context.Context, faq content.FAQ) (content.FAQ, error) {
	repo.faqs.Lock()
	defer repo.faqs.Unlock()

	if _, ok := repo.faqs.table[faq.ID]; !ok {
		return content.FAQ{}, content.ErrNotFound
	}
	repo.faqs.table[faq.ID] = &faq
	return faq, nil
}

func (repo *contentRepository) DeleteFAQ(ctx context.Context, id int) error {
	repo.faqs.Lock()
	defer repo.faqs.Unlock()

	if _, ok := repo.faqs.table[id]; !ok {
		return content.ErrNotFound
	}
	delete(repo.faqs.table, id)
	return nil
}
