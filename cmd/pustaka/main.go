package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pustaka/internal/config"
	"pustaka/internal/http/handlers"
	applog "pustaka/internal/log"
	"pustaka/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Something went wrong. Please try again."
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
				msg = fe.Message
			} else {
				applog.Error(c, "server.error", err, nil)
			}
			return c.Status(code).JSON(fiber.Map{
				"success":   false,
				"data":      nil,
				"message":   msg,
				"timestamp": time.Now().Format("2006-01-02 15:04:05"),
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- Static UI ----------
	app.Static("/", "./web/static")

	// ---------- API ----------
	deps := handlers.NewDeps(db, cfg)

	app.Get("/api/members", deps.MemberHandler.Get)
	app.Post("/api/members", deps.MemberHandler.Post)
	app.Delete("/api/members", deps.MemberHandler.Delete)

	app.Get("/api/books", deps.BookHandler.Get)
	app.Post("/api/books", deps.BookHandler.Post)
	app.Put("/api/books", deps.BookHandler.Put)
	app.Delete("/api/books", deps.BookHandler.Delete)

	app.Get("/api/loans", deps.LoanHandler.Get)
	app.Post("/api/loans", deps.LoanHandler.Post)

	// Remaining methods on the resource paths are 405, not 404
	methodNotAllowed := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"success":   false,
			"data":      nil,
			"message":   "Method not allowed",
			"timestamp": time.Now().Format("2006-01-02 15:04:05"),
		})
	}
	app.All("/api/members", methodNotAllowed)
	app.All("/api/books", methodNotAllowed)
	app.All("/api/loans", methodNotAllowed)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":   false,
			"data":      nil,
			"message":   "Not found",
			"timestamp": time.Now().Format("2006-01-02 15:04:05"),
		})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
