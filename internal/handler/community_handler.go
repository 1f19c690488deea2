package handler

import (
	"net/http"
	"strconv"

	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc     *service.CommunityService
	members *service.MembershipService
}

type CommunityCreateReq struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type JoinReq struct {
	Role string `json:"role"`
}

func NewCommunityHandler(svc *service.CommunityService, members *service.MembershipService) *CommunityHandler {
	return &CommunityHandler{svc: svc, members: members}
}

// Create 调用者即 owner
func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), service.CreateCommunityInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     callerID(c),
	})
	if err != nil && !service.IsWarning(err) {
		writeError(c, err)
		return
	}
	resp := gin.H{"community": community}
	if err != nil {
		resp["warning"] = gin.H{"code": service.ErrorCode(err), "msg": err.Error()}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.GetCommunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListCommunities(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Update 只接受 name/description，其余字段忽略
func (h *CommunityHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		writeInvalidParams(c)
		return
	}

	community, err := h.svc.UpdateCommunity(c.Request.Context(), c.Param("id"), callerID(c), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	if community == nil {
		writeError(c, service.ErrCommunityNotFound)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	ok, err := h.svc.DeleteCommunity(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil && !service.IsWarning(err) {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, service.ErrCommunityNotFound)
		return
	}
	resp := gin.H{"msg": "ok"}
	if err != nil {
		resp["warning"] = gin.H{"code": service.ErrorCode(err), "msg": err.Error()}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	var req JoinReq
	// body 可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeInvalidParams(c)
			return
		}
	}

	m, err := h.members.Join(c.Request.Context(), callerID(c), c.Param("id"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	ok, err := h.members.Leave(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"left": ok})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	list, err := h.members.MembersOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
