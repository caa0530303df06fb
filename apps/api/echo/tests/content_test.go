package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tawaslapp/tawasl/core/content"
)

func createArticle(t *testing.T, title, category string, publishedAt time.Time) content.Article {
	t.Helper()
	art, err := contentRepo.CreateArticle(context.Background(), content.Article{
		Title:       title,
		Excerpt:     "An excerpt about " + title,
		Content:     "Some long enough content about " + title,
		Category:    category,
		Author:      "Jo",
		PublishedAt: publishedAt,
		ReadTime:    3,
	})
	if err != nil {
		t.Fatalf("createArticle() failed: %v", err)
	}
	return art
}

func Test_contentApi_articleCrud(t *testing.T) {
	setup(t)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	content.NowFunc = func() time.Time { return now }
	defer func() { content.NowFunc = time.Now }()

	admin := createUser(t, "admin", "admin@test.cd", "secret", true, true)
	plain := createUser(t, "plain", "plain@test.cd", "secret", true, false)
	adminToken := getToken(t, admin)

	created := content.Article{
		ID:          1,
		Title:       "Active Listening",
		Excerpt:     "Why listening beats talking",
		Content:     "Listening is half of every conversation and most of its value.",
		Category:    content.DefaultCategory,
		Author:      content.DefaultAuthor,
		PublishedAt: now,
		ReadTime:    content.DefaultReadTime,
	}
	updated := created
	updated.Title = "Active Listening 101"
	updated.Category = "Skills"

	body := []byte(`{"title":"Active Listening","excerpt":"Why listening beats talking",` +
		`"content":"Listening is half of every conversation and most of its value."}`)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/articles", body: body,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: "/api/articles", body: body, token: getToken(t, plain),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "title too short", method: http.MethodPost, path: "/api/articles", token: adminToken,
			body:     []byte(`{"title":"ab","excerpt":"Why listening beats talking","content":"Listening is half of every conversation and most of its value."}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "created with defaults", method: http.MethodPost, path: "/api/articles", body: body, token: adminToken,
			wantCode: http.StatusCreated, wantData: marchallObj(t, created),
		},
		{
			name: "retrieved", method: http.MethodGet, path: "/api/articles/1",
			wantCode: http.StatusOK, wantData: marchallObj(t, created),
		},
		{
			name: "unknown article", method: http.MethodGet, path: "/api/articles/99",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Article not found"}),
		},
		{
			name: "updated fields merged", method: http.MethodPut, path: "/api/articles/1", token: adminToken,
			body:     []byte(`{"title":"Active Listening 101","category":"Skills"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, updated),
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/api/articles/99", token: adminToken,
			body:     []byte(`{"title":"Active Listening 101"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Article not found"}),
		},
		{name: "deleted", method: http.MethodDelete, path: "/api/articles/1", token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/api/articles/1", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Article not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_articleQuery(t *testing.T) {
	setup(t)

	now := time.Now().UTC()
	old := createArticle(t, "Body Language Basics", "Non-verbal", now.Add(-2*time.Hour))
	mid := createArticle(t, "Small Talk At Work", "Workplace", now.Add(-1*time.Hour))
	fresh := createArticle(t, "Public Speaking Nerves", "Non-verbal", now)

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "all newest first", path: "/api/articles", wantData: marchallList(t, fresh, mid, old)},
		{name: "search (unknown)", path: "/api/articles?search=lol", wantData: empty},
		{name: "search=talk", path: "/api/articles?search=talk", wantData: marchallList(t, mid)},
		{name: "search=BASICS", path: "/api/articles?search=BASICS", wantData: marchallList(t, old)},
		{name: "category", path: "/api/articles?category=Non-verbal", wantData: marchallList(t, fresh, old)},
		{name: "category=All Categories means no filter", path: "/api/articles?category=All+Categories", wantData: marchallList(t, fresh, mid, old)},
		{name: "search & category", path: "/api/articles?search=nerves&category=Non-verbal", wantData: marchallList(t, fresh)},
		{name: "search & category (empty)", path: "/api/articles?search=talk&category=Non-verbal", wantData: empty},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func createFAQ(t *testing.T, question, category string) content.FAQ {
	t.Helper()
	faq, err := contentRepo.CreateFAQ(context.Background(), content.FAQ{
		Question: question,
		Answer:   "An answer to: " + question,
		Category: category,
	})
	if err != nil {
		t.Fatalf("createFAQ() failed: %v", err)
	}
	return faq
}

func Test_contentApi_faqQuery(t *testing.T) {
	setup(t)

	length := createFAQ(t, "How long is a test?", "Tests")
	scores := createFAQ(t, "How is my score computed?", "Tests")
	account := createFAQ(t, "How do I delete my account?", "Account")

	tests := []httpTest{
		{name: "all", path: "/api/faqs", wantData: marchallList(t, length, scores, account)},
		{name: "category", path: "/api/faqs?category=Account", wantData: marchallList(t, account)},
		{name: "category=All Topics means no filter", path: "/api/faqs?category=All+Topics", wantData: marchallList(t, length, scores, account)},
		{name: "search=score", path: "/api/faqs?search=score", wantData: marchallList(t, scores)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_faqs(t *testing.T) {
	setup(t)

	admin := createUser(t, "admin", "admin@test.cd", "secret", true, true)
	plain := createUser(t, "plain", "plain@test.cd", "secret", true, false)
	adminToken := getToken(t, admin)

	created := content.FAQ{
		ID:       1,
		Question: "How long is a test?",
		Answer:   "Most tests take about 15 minutes.",
		Category: content.DefaultCategory,
	}
	updated := created
	updated.Answer = "Between 10 and 20 minutes."

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/faqs",
			body:     []byte(`{"question":"How long is a test?","answer":"Most tests take about 15 minutes."}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: "/api/faqs", token: getToken(t, plain),
			body:     []byte(`{"question":"How long is a test?","answer":"Most tests take about 15 minutes."}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "created with default category", method: http.MethodPost, path: "/api/faqs", token: adminToken,
			body:     []byte(`{"question":"How long is a test?","answer":"Most tests take about 15 minutes."}`),
			wantCode: http.StatusCreated, wantData: marchallObj(t, created),
		},
		{
			name: "listed", method: http.MethodGet, path: "/api/faqs",
			wantCode: http.StatusOK, wantData: marchallList(t, created),
		},
		{
			name: "updated", method: http.MethodPut, path: "/api/faqs/1", token: adminToken,
			body:     []byte(`{"answer":"Between 10 and 20 minutes."}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, updated),
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/api/faqs/99", token: adminToken,
			body:     []byte(`{"answer":"lol"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "FAQ not found"}),
		},
		{name: "deleted", method: http.MethodDelete, path: "/api/faqs/1", token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/api/faqs/1", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "FAQ not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
