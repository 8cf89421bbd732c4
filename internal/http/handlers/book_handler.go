package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "pustaka/internal/log"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

type BookHandler struct {
	Catalog  *services.CatalogService
	Activity *repos.ActivityRepo
}

func (h *BookHandler) Get(c *fiber.Ctx) error {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		b, err := h.Catalog.Get(id)
		if err != nil {
			return fail(c, "book.get", err)
		}
		return ok(c, b, "Book found")
	}

	books, err := h.Catalog.List(c.Query("search"))
	if err != nil {
		return fail(c, "book.list", err)
	}
	h.logActivity(c, "GET_ALL_BOOKS", fmt.Sprintf("fetched %d books", len(books)))
	return ok(c, books, "Books fetched")
}

func (h *BookHandler) Post(c *fiber.Ctx) error {
	var in services.BookInput
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid request body")
	}

	b, err := h.Catalog.Create(in)
	if err != nil {
		return fail(c, "book.create", err)
	}

	h.logActivity(c, "ADD_BOOK", fmt.Sprintf("added %s (%s)", b.Title, b.Author))
	applog.Audit(c, "book.create", map[string]any{"book_id": b.ID})
	return created(c, fiber.Map{"id": b.ID}, "Book added")
}

// Put applies a partial update; only fields present in the body are touched.
func (h *BookHandler) Put(c *fiber.Ctx) error {
	var body struct {
		ID string `json:"id"`
		repos.BookPatch
	}
	if err := c.BodyParser(&body); err != nil {
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid request body")
	}
	if strings.TrimSpace(body.ID) == "" {
		return respond(c, fiber.StatusBadRequest, false, nil, "Book id is required")
	}

	if err := h.Catalog.Update(body.ID, body.BookPatch); err != nil {
		return fail(c, "book.update", err)
	}

	h.logActivity(c, "UPDATE_BOOK", "updated "+body.ID)
	return ok(c, nil, "Book updated")
}

func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		return respond(c, fiber.StatusBadRequest, false, nil, "Book id is required")
	}

	b, err := h.Catalog.Delete(id)
	if err != nil {
		return fail(c, "book.delete", err)
	}

	h.logActivity(c, "DELETE_BOOK", fmt.Sprintf("deleted %s (%s)", b.Title, b.Author))
	applog.Audit(c, "book.delete", map[string]any{"book_id": id})
	return ok(c, nil, "Book deleted")
}

func (h *BookHandler) logActivity(c *fiber.Ctx, action, description string) {
	if err := h.Activity.Log(action, description, c.IP(), string(c.Request().Header.UserAgent())); err != nil {
		log.Printf("[activity] %s failed: %v", action, err)
	}
}
