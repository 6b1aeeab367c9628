package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/templates"
)

// BooksWebController serves the server-rendered catalog pages.
// Form fields are taken verbatim; only the store validates them.
type BooksWebController struct {
	store   BookStore
	auditor BookAuditor
}

// NewBooksWebController creates the controller. auditor may be nil.
func NewBooksWebController(store BookStore, auditor BookAuditor) *BooksWebController {
	return &BooksWebController{store: store, auditor: auditor}
}

// BooksPage renders the catalog.
// GET /
func (wc *BooksWebController) BooksPage(c *gin.Context) {
	list, err := wc.store.ListBooks()
	if err != nil {
		log.Printf("Failed to list books: %v", err)
		c.HTML(http.StatusInternalServerError, templates.Books, wc.pageData(c, "Books", gin.H{
			"Error": "Could not load books, try again.",
		}))
		return
	}

	c.HTML(http.StatusOK, templates.Books, wc.pageData(c, "Books", gin.H{
		"Books": list,
	}))
}

// CreatePage renders an empty book form.
// GET /create/
func (wc *BooksWebController) CreatePage(c *gin.Context) {
	wc.renderForm(c, http.StatusOK, &entities.Book{}, "")
}

// Create stores a book from the submitted form.
// POST /create/
func (wc *BooksWebController) Create(c *gin.Context) {
	book := &entities.Book{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Description: c.PostForm("description"),
	}

	if err := wc.store.CreateBook(book); err != nil {
		wc.handleSaveError(c, book, err)
		return
	}

	wc.audit(c, entities.AuditActionBookCreate, book)
	c.Redirect(http.StatusFound, "/")
}

// UpdatePage renders the form pre-filled with an existing book.
// GET /update/:id/
func (wc *BooksWebController) UpdatePage(c *gin.Context) {
	book, ok := wc.lookup(c)
	if !ok {
		return
	}
	wc.renderForm(c, http.StatusOK, book, "")
}

// Update replaces all fields of an existing book.
// POST /update/:id/
func (wc *BooksWebController) Update(c *gin.Context) {
	book, ok := wc.lookup(c)
	if !ok {
		return
	}

	book.Title = c.PostForm("title")
	book.Author = c.PostForm("author")
	book.Description = c.PostForm("description")

	if err := wc.store.UpdateBook(book); err != nil {
		wc.handleSaveError(c, book, err)
		return
	}

	wc.audit(c, entities.AuditActionBookUpdate, book)
	c.Redirect(http.StatusFound, "/")
}

// Delete removes a book without confirmation.
// GET /delete/:id/
func (wc *BooksWebController) Delete(c *gin.Context) {
	book, ok := wc.lookup(c)
	if !ok {
		return
	}

	if err := wc.store.DeleteBook(book.ID); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			wc.renderNotFound(c)
			return
		}
		log.Printf("Failed to delete book %d: %v", book.ID, err)
		c.HTML(http.StatusInternalServerError, templates.NotFound, wc.pageData(c, "Error", gin.H{
			"Error": "Could not delete the book, try again.",
		}))
		return
	}

	wc.audit(c, entities.AuditActionBookDelete, book)
	c.Redirect(http.StatusFound, "/")
}

// RenderNotFound is the web 404 handler, also used for unknown routes.
func (wc *BooksWebController) RenderNotFound(c *gin.Context) {
	wc.renderNotFound(c)
}

func (wc *BooksWebController) lookup(c *gin.Context) (*entities.Book, bool) {
	book, err := wc.store.GetBookByID(bookID(c))
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			wc.renderNotFound(c)
		} else {
			log.Printf("Failed to get book %d: %v", bookID(c), err)
			c.HTML(http.StatusInternalServerError, templates.NotFound, wc.pageData(c, "Error", gin.H{
				"Error": "Could not load the book, try again.",
			}))
		}
		return nil, false
	}
	return book, true
}

func (wc *BooksWebController) handleSaveError(c *gin.Context, book *entities.Book, err error) {
	switch {
	case errors.Is(err, books.ErrInvalidBook):
		wc.renderForm(c, http.StatusBadRequest, book, invalidBookMessage(err)+".")
	case errors.Is(err, books.ErrBookNotFound):
		wc.renderNotFound(c)
	default:
		log.Printf("Failed to save book: %v", err)
		wc.renderForm(c, http.StatusInternalServerError, book, "Could not save the book, try again.")
	}
}

func (wc *BooksWebController) renderForm(c *gin.Context, status int, book *entities.Book, message string) {
	title := "New book"
	if book.ID != 0 {
		title = "Edit book"
	}
	c.HTML(status, templates.BookForm, wc.pageData(c, title, gin.H{
		"Book":      book,
		"CSRFToken": auth.GetCSRFToken(c),
		"Error":     message,
	}))
}

func (wc *BooksWebController) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, templates.NotFound, wc.pageData(c, "Not found", nil))
}

// pageData merges the per-page values with the ones every layout needs.
func (wc *BooksWebController) pageData(c *gin.Context, title string, data gin.H) gin.H {
	page := gin.H{
		"Title":    title,
		"Username": auth.GetUsername(c),
	}
	for k, v := range data {
		page[k] = v
	}
	return page
}

func (wc *BooksWebController) audit(c *gin.Context, action string, book *entities.Book) {
	if wc.auditor == nil {
		return
	}
	wc.auditor.LogBook(auth.GetUserID(c), action, book.ID, book.Title)
}
