package handler

import (
	"net/http"

	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc      *service.UserService
	approval *service.ApprovalService
	members  *service.MembershipService
	groups   *service.CommunityService
}

type ApproveReq struct {
	Code string `json:"code" binding:"required,len=6"`
}

func NewUserHandler(svc *service.UserService, approval *service.ApprovalService, members *service.MembershipService, groups *service.CommunityService) *UserHandler {
	return &UserHandler{svc: svc, approval: approval, members: members, groups: groups}
}

// Create 注册接口
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	list, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Update 只能修改自己的资料
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id != callerID(c) {
		writeError(c, service.ErrUnauthorized)
		return
	}
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		writeError(c, service.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id != callerID(c) {
		writeError(c, service.ErrUnauthorized)
		return
	}
	ok, err := h.svc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, service.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// RequestApproval 发送审核验证码到注册邮箱
func (h *UserHandler) RequestApproval(c *gin.Context) {
	id := c.Param("id")
	if id != callerID(c) {
		writeError(c, service.ErrUnauthorized)
		return
	}
	if err := h.approval.RequestApproval(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Send code successfully"})
}

func (h *UserHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id != callerID(c) {
		writeError(c, service.ErrUnauthorized)
		return
	}
	var req ApproveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidParams(c)
		return
	}

	user, err := h.approval.Approve(c.Request.Context(), id, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Communities 用户加入的社区
func (h *UserHandler) Communities(c *gin.Context) {
	list, err := h.members.CommunitiesOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// OwnedCommunities 用户创建的社区
func (h *UserHandler) OwnedCommunities(c *gin.Context) {
	list, err := h.groups.ListForOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
