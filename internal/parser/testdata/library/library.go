package library

import (
	"context"
	"errors"
	"time"
)

// Book is a catalogued title.
type Book struct {
	// Title as printed.
	Title     string `json:"title"`
	Pages     int    `json:"pages"`
	Price     float64
	Tags      []string
	Author    *Author
	Published time.Time
	Secret    string `json:"-"`
	shelf     int

	// Deprecated: use Title.
	Name string
}

// Author wrote books.
type Author struct {
	Name  string
	Books []*Book
}

// NewAuthor returns an Author.
func NewAuthor(name string) *Author { return &Author{Name: name} }

// Library holds books.
type Library struct {
	Books []Book
	Index map[string]int
}

func NewLibrary() (*Library, error) { return &Library{}, nil }

// Find looks up a book by title.
func (l *Library) Find(ctx context.Context, title string) (*Book, error) {
	for i := range l.Books {
		if l.Books[i].Title == title {
			return &l.Books[i], nil
		}
	}
	return nil, errors.New("not found")
}

// Add adds a book.
func (l *Library) Add(book *Book) error {
	l.Books = append(l.Books, *book)
	return nil
}

func (l *Library) Count() int { return len(l.Books) }

func (l *Library) Split() (int, int) { return 0, len(l.Books) }

func (l *Library) Tagged(tags ...string) []Book { return nil }

// Page is one page of results.
type Page[T any] struct {
	Items []T
}

// Shelf groups a library under a label.
type Shelf struct {
	Library
	Label string
}
