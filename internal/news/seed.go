package news

import (
	"context"
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/store"
)

// Seed installs the demo posts when repo is empty.
func Seed(ctx context.Context, repo store.Store[Post], authorID, author string) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("news: seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, post := range demoPosts(authorID, author) {
		if _, err := repo.Insert(ctx, post); err != nil {
			return fmt.Errorf("news: seed %s: %w", post.ID, err)
		}
	}
	return nil
}

func demoPosts(authorID, author string) []Post {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Post{
		{
			ID:    "1",
			Title: "Company Achieves Major Milestone",
			Content: "We are excited to announce that our company has reached a significant milestone this quarter. " +
				"Our team's dedication and hard work have led to unprecedented growth and success.\n\n" +
				"This achievement wouldn't have been possible without the collaborative efforts of every team member. " +
				"We look forward to continuing this momentum and reaching even greater heights in the coming months.\n\n" +
				"Thank you to everyone who has contributed to this success!",
			Excerpt:     "Our company has reached a significant milestone this quarter through team dedication and hard work.",
			BannerImage: "/static/img/banner.svg",
			Images:      []string{"/static/img/banner.svg"},
			Author:      author,
			AuthorID:    authorID,
			PublishedAt: day(2024, time.January, 15),
			UpdatedAt:   day(2024, time.January, 15),
			Status:      StatusPublished,
		},
		{
			ID:    "2",
			Title: "New Product Launch Coming Soon",
			Content: "We're thrilled to give you a sneak peek at our upcoming product launch. " +
				"After months of development and testing, we're almost ready to unveil something truly special.\n\n" +
				"Our development team has been working tirelessly to create a solution that addresses the key challenges our customers face. " +
				"The new product features cutting-edge technology and an intuitive user interface.\n\n" +
				"Stay tuned for more details and the official launch date!",
			Excerpt:     "Get ready for our exciting new product launch featuring cutting-edge technology and intuitive design.",
			BannerImage: "/static/img/banner.svg",
			Author:      author,
			AuthorID:    authorID,
			PublishedAt: day(2024, time.January, 10),
			UpdatedAt:   day(2024, time.January, 12),
			Status:      StatusPublished,
		},
	}
}
