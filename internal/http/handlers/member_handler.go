package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pustaka/internal/audit"
	applog "pustaka/internal/log"
	"pustaka/internal/repos"
	"pustaka/internal/services"
)

type MemberHandler struct {
	Members  *services.MemberService
	Activity *repos.ActivityRepo
	Backup   *audit.Writer
}

// Get serves both by-id lookup (?id=) and list/search (?search=).
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		m, err := h.Members.Get(id)
		if err != nil {
			return fail(c, "member.get", err)
		}
		return ok(c, m, "Member found")
	}

	members, err := h.Members.List(c.Query("search"))
	if err != nil {
		return fail(c, "member.list", err)
	}
	h.logActivity(c, "GET_ALL_MEMBERS", fmt.Sprintf("fetched %d members", len(members)))
	return ok(c, members, "Members fetched")
}

func (h *MemberHandler) Post(c *fiber.Ctx) error {
	var in services.MemberInput
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, false, nil, "Invalid request body")
	}

	m, err := h.Members.Register(in)
	if err != nil {
		return fail(c, "member.register", err)
	}

	h.logActivity(c, "ADD_MEMBER", fmt.Sprintf("registered %s (%s)", m.Name, m.Email))
	if err := h.Backup.Member(map[string]any{
		"id": m.ID, "name": m.Name, "email": m.Email, "action": "REGISTER",
	}); err != nil {
		log.Printf("[backup] member record failed: %v", err)
	}
	applog.Audit(c, "member.register", map[string]any{"member_id": m.ID})

	return created(c, fiber.Map{"id": m.ID}, "Member registered")
}

func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		return respond(c, fiber.StatusBadRequest, false, nil, "Member id is required")
	}

	m, err := h.Members.Delete(id)
	if err != nil {
		return fail(c, "member.delete", err)
	}

	h.logActivity(c, "DELETE_MEMBER", fmt.Sprintf("deleted %s (%s)", m.Name, m.Email))
	applog.Audit(c, "member.delete", map[string]any{"member_id": id})
	return ok(c, nil, "Member deleted")
}

func (h *MemberHandler) logActivity(c *fiber.Ctx, action, description string) {
	if err := h.Activity.Log(action, description, c.IP(), string(c.Request().Header.UserAgent())); err != nil {
		log.Printf("[activity] %s failed: %v", action, err)
	}
}
