package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// createBookRequest is the POST /api/books/ body. Missing fields are empty.
type createBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// bookPatch is the PUT/PATCH body. A nil field is left unchanged; JSON null
// counts as absent.
type bookPatch struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
}

// apply overwrites the present fields. Title and author are trimmed,
// description is stored as sent.
func (p bookPatch) apply(book *entities.Book) {
	if p.Title != nil {
		book.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		book.Author = strings.TrimSpace(*p.Author)
	}
	if p.Description != nil {
		book.Description = *p.Description
	}
}

// BooksAPIController serves the JSON book API.
type BooksAPIController struct {
	store   BookStore
	auditor BookAuditor
}

// NewBooksAPIController creates the controller. auditor may be nil.
func NewBooksAPIController(store BookStore, auditor BookAuditor) *BooksAPIController {
	return &BooksAPIController{store: store, auditor: auditor}
}

// List returns every book.
// GET /api/books/
func (bc *BooksAPIController) List(c *gin.Context) {
	list, err := bc.store.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create adds a book from a JSON body.
// POST /api/books/
func (bc *BooksAPIController) Create(c *gin.Context) {
	var req createBookRequest
	if err := decodeJSONBody(c, &req); err != nil {
		respondBadRequest(c, msgInvalidJSON)
		return
	}

	book := &entities.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Description: strings.TrimSpace(req.Description),
	}
	if book.Title == "" || book.Author == "" {
		respondBadRequest(c, msgFieldsRequired)
		return
	}

	if err := bc.store.CreateBook(book); err != nil {
		if errors.Is(err, books.ErrInvalidBook) {
			respondBadRequest(c, invalidBookMessage(err))
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	bc.audit(c, entities.AuditActionBookCreate, book)
	c.JSON(http.StatusCreated, book)
}

// Get returns a single book.
// GET /api/books/:id/
func (bc *BooksAPIController) Get(c *gin.Context) {
	book, ok := bc.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update applies a partial update. PUT behaves like PATCH.
// PUT|PATCH /api/books/:id/
func (bc *BooksAPIController) Update(c *gin.Context) {
	book, ok := bc.lookup(c)
	if !ok {
		return
	}

	var patch bookPatch
	if err := decodeJSONBody(c, &patch); err != nil {
		respondBadRequest(c, msgInvalidJSON)
		return
	}

	patch.apply(book)
	if book.Title == "" || book.Author == "" {
		respondBadRequest(c, msgFieldsRequired)
		return
	}

	if err := bc.store.UpdateBook(book); err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c)
		case errors.Is(err, books.ErrInvalidBook):
			respondBadRequest(c, invalidBookMessage(err))
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}

	bc.audit(c, entities.AuditActionBookUpdate, book)
	c.JSON(http.StatusOK, book)
}

// Delete removes a book.
// DELETE /api/books/:id/
func (bc *BooksAPIController) Delete(c *gin.Context) {
	book, ok := bc.lookup(c)
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(book.ID); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c)
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	bc.audit(c, entities.AuditActionBookDelete, book)
	c.JSON(http.StatusOK, ErrorResponse{Detail: msgDeleted})
}

// lookup loads the book named by the path id, answering 404 when absent.
func (bc *BooksAPIController) lookup(c *gin.Context) (*entities.Book, bool) {
	book, err := bc.store.GetBookByID(bookID(c))
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c)
		} else {
			respondInternalError(c, err, "get book")
		}
		return nil, false
	}
	return book, true
}

func (bc *BooksAPIController) audit(c *gin.Context, action string, book *entities.Book) {
	if bc.auditor == nil {
		return
	}
	bc.auditor.LogBook(auth.GetUserID(c), action, book.ID, book.Title)
}

// decodeJSONBody decodes the request body into v. An empty body is read as
// an empty object.
func decodeJSONBody(c *gin.Context, v any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
