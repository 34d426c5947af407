package newsapi

import (
	"encoding/json"

	"citypulse/internal/domain/entity"
)

// envelope is the provider response. Pointer fields distinguish a missing
// key from an empty value.
type envelope struct {
	Status       string        `json:"status"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	TotalResults int           `json:"totalResults"`
	Articles     *[]rawArticle `json:"articles"`
}

type rawArticle struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	URLToImage  *string    `json:"urlToImage"`
	URL         *string    `json:"url"`
	PublishedAt *string    `json:"publishedAt"`
	Source      *rawSource `json:"source"`
}

type rawSource struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decode maps a 2xx body onto articles, preserving order and count.
func decode(body []byte, city string, statusCode int) ([]entity.Article, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}

	switch env.Status {
	case "ok":
	case "error":
		return nil, &FetchError{City: city, StatusCode: statusCode, Code: env.Code, Message: env.Message}
	default:
		return nil, &ParseError{Index: -1, Field: "status"}
	}
	if env.Articles == nil {
		return nil, &ParseError{Index: -1, Field: "articles"}
	}

	items := *env.Articles
	out := make([]entity.Article, 0, len(items))
	for i, it := range items {
		switch {
		case it.Title == nil:
			return nil, &ParseError{Index: i, Field: "title"}
		case it.URL == nil:
			return nil, &ParseError{Index: i, Field: "url"}
		case it.PublishedAt == nil:
			return nil, &ParseError{Index: i, Field: "publishedAt"}
		}

		a := entity.Article{
			Title:       *it.Title,
			Description: deref(it.Description),
			Image:       deref(it.URLToImage),
			URL:         *it.URL,
			Date:        *it.PublishedAt,
		}
		if it.Source != nil {
			a.Source = deref(it.Source.Name)
		}
		out = append(out, a)
	}
	return out, nil
}
