package model

// ArticleSummary is the lead-section extract of an article.
type ArticleSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// ArticleMetadata describes the article's history boundaries.
type ArticleMetadata struct {
	CreatedAt *string `json:"created_at"`
}

// PageView is the daily view count of an article.
type PageView struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}
