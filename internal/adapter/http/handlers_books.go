package adapthttp

import (
	"errors"
	"net/http"

	"bookstore/internal/domain"
)

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	limit := intQuery(r, "limit", 0)
	offset := intQuery(r, "offset", 0)
	books, err := s.books.List(r.Context(), limit, offset)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if books == nil {
		books = []domain.Book{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "books": books})
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	id, ok := pathID(r.URL.Path, "/books/")
	if !ok {
		writeFail(w, http.StatusNotFound, "Book not found")
		return
	}

	book, err := s.books.Get(r.Context(), id)
	if errors.Is(err, domain.ErrBookNotFound) {
		writeFail(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "book": book})
}

type bookRequest struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Genres        []string `json:"genres"`
	Description   string   `json:"description"`
	PublishedYear string   `json:"publishedYear"`
	Price         float64  `json:"price"`
	CoverImage    string   `json:"coverImage"`
}

func (req bookRequest) toDomain() domain.Book {
	return domain.Book{
		Title:         req.Title,
		Author:        req.Author,
		Genres:        req.Genres,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
		Price:         req.Price,
		CoverImage:    req.CoverImage,
	}
}

func (s *Server) handleAdminBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var req bookRequest
	if err := parseJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	id, err := s.books.Create(r.Context(), req.toDomain())
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "bookId": id})
}

func (s *Server) handleAdminBookByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/admin/books/")
	if !ok {
		writeFail(w, http.StatusNotFound, "Book not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req bookRequest
		if err := parseJSON(r, &req); err != nil {
			writeFail(w, http.StatusBadRequest, "invalid request")
			return
		}
		book := req.toDomain()
		book.ID = id
		err := s.books.Update(r.Context(), book)
		if errors.Is(err, domain.ErrBookNotFound) {
			writeFail(w, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			writeFail(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	case http.MethodDelete:
		err := s.books.Delete(r.Context(), id)
		if errors.Is(err, domain.ErrBookNotFound) {
			writeFail(w, http.StatusNotFound, "Book not found")
			return
		}
		if err != nil {
			writeFail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}
