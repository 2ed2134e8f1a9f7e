package router

import (
	"school_messaging_service/internal/messaging/app"
	"school_messaging_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册訊息相關的路由
func RegisterRoutes(r *fiber.App, h *app.MessagingHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/users", h.ListUsers)
	r.Post("/logout", h.Logout)

	r.Get("/conversations", h.ListConversations)
	r.Post("/conversations", h.CreateConversation)
	r.Delete("/conversations/current", h.Deselect)
	r.Get("/conversations/:id/messages", h.GetThread)
	r.Post("/conversations/:id/messages", h.SendMessage)
	r.Get("/conversations/:id/typing", h.GetTyping)

	r.Post("/messages/:id/reactions", h.ToggleReaction)

	r.Post("/attachments", h.UploadAttachments)
	r.Get("/attachments/:id", h.GetAttachment)
	r.Delete("/attachments/:id", h.RemoveAttachment)

	r.Put("/typing", h.SetTyping)
}
