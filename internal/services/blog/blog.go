// Package blog отдаёт статьи блога и рендерит их Markdown в HTML.
package blog

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// Service хранит статьи блога.
type Service struct {
	posts []models.BlogPost
	md    goldmark.Markdown
}

// New создаёт Service со встроенными статьями.
func New() *Service {
	return NewWithPosts(posts)
}

// NewWithPosts создаёт Service с заданным набором статей.
func NewWithPosts(p []models.BlogPost) *Service {
	return &Service{
		posts: p,
		md:    goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}
}

// List возвращает анонсы статей без содержимого.
func (s *Service) List() []models.BlogPost {
	out := make([]models.BlogPost, len(s.posts))
	copy(out, s.posts)
	return out
}

// Exists сообщает, есть ли статья с таким id.
func (s *Service) Exists(id int) bool {
	_, ok := s.find(id)
	return ok
}

// Get возвращает статью с отрендеренным HTML. Неизвестный id — models.ErrNotFound.
func (s *Service) Get(id int) (models.BlogPost, error) {
	const op = "blog.Get"
	p, ok := s.find(id)
	if !ok {
		return models.BlogPost{}, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(p.Content), &buf); err != nil {
		return models.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	p.HTML = buf.String()
	return p, nil
}

func (s *Service) find(id int) (models.BlogPost, bool) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.BlogPost{}, false
}
