package handler

import (
	"net/http"
	"strconv"

	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.ChatService
}

type MessageReq struct {
	Text string `json:"text" binding:"required"`
}

func NewMessageHandler(svc *service.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Send 发送消息接口
func (h *MessageHandler) Send(c *gin.Context) {
	var req MessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), callerID(c), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// List 最新消息在前
func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.svc.ListMessages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *MessageHandler) Update(c *gin.Context) {
	var req MessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	msg, err := h.svc.UpdateMessage(c.Request.Context(), c.Param("id"), callerID(c), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	if msg == nil {
		writeError(c, service.ErrMessageNotFound)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	ok, err := h.svc.DeleteMessage(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, service.ErrMessageNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
