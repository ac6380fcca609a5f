package news

import (
	"strings"
	"time"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// excerptLength is the number of content characters used for a generated excerpt.
const excerptLength = 150

// Post is a news article shown on the company site.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	BannerImage string    `json:"banner_image,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Status      Status    `json:"status"`
}

// GetID implements store.Record.
func (p Post) GetID() string {
	return p.ID
}

// Paragraphs splits the content on blank lines for display.
func (p Post) Paragraphs() []string {
	var out []string
	for _, para := range strings.Split(p.Content, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// Input carries the editable fields of a post.
type Input struct {
	Title       string   `form:"title" validate:"required,max=200"`
	Content     string   `form:"content" validate:"required"`
	Excerpt     string   `form:"excerpt" validate:"max=500"`
	BannerImage string   `form:"banner_image" validate:"max=2048"`
	Images      []string `form:"images" validate:"dive,max=2048"`
	Status      Status   `form:"status" validate:"required,oneof=draft published"`
}

func (in Input) normalized() Input {
	out := Input{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		Excerpt:     strings.TrimSpace(in.Excerpt),
		BannerImage: strings.TrimSpace(in.BannerImage),
		Status:      Status(strings.TrimSpace(string(in.Status))),
	}
	if out.Status == "" {
		out.Status = StatusDraft
	}
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			out.Images = append(out.Images, img)
		}
	}
	if out.Excerpt == "" && out.Content != "" {
		out.Excerpt = DefaultExcerpt(out.Content)
	}
	return out
}

// DefaultExcerpt is the opening of content followed by an ellipsis.
func DefaultExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}

// InputFrom pre-fills an edit form.
func InputFrom(p Post) Input {
	return Input{
		Title:       p.Title,
		Content:     p.Content,
		Excerpt:     p.Excerpt,
		BannerImage: p.BannerImage,
		Images:      append([]string(nil), p.Images...),
		Status:      p.Status,
	}
}
