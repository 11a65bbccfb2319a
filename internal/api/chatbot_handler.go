package api

import (
	"net/http"

	"corpintranet/portal/internal/chatbot"

	"github.com/gin-gonic/gin"
)

// Answerer replies to chatbot messages. *chatbot.Bot satisfies it.
type Answerer interface {
	Answer(message string) chatbot.Reply
}

type ChatbotHandler struct {
	bot Answerer
}

func NewChatbotHandler(bot Answerer) *ChatbotHandler {
	return &ChatbotHandler{bot: bot}
}

type AskRequest struct {
	Message string `json:"message" binding:"required,max=500"`
}

func (h *ChatbotHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, h.bot.Answer(req.Message))
}
