package router

import (
	"net/http"

	"Chat_Community/internal/handler"
	"Chat_Community/internal/metrics"
	"Chat_Community/internal/middleware"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 路由需要的全部服务
type Deps struct {
	Users       *service.UserService
	Approval    *service.ApprovalService
	Communities *service.CommunityService
	Members     *service.MembershipService
	Chat        *service.ChatService
	Resolver    pkg.Resolver
	Metrics     *metrics.Registry
	// Gatherer 为空时不挂 /metrics
	Gatherer       prometheus.Gatherer
	RateLimitRPS   float64
	RateLimitBurst int
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Metrics))
	if d.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(d.RateLimitRPS, d.RateLimitBurst))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	user := handler.NewUserHandler(d.Users, d.Approval, d.Members, d.Communities)
	community := handler.NewCommunityHandler(d.Communities, d.Members)
	message := handler.NewMessageHandler(d.Chat)
	auth := middleware.AuthMiddleware(d.Resolver)

	// 注册不需要登录态
	r.POST("/api/users", user.Create)

	// 用户相关接口
	userGroup := r.Group("/api/users")
	userGroup.Use(auth)
	{
		userGroup.GET("", user.List)
		userGroup.GET("/:id", user.Get)
		userGroup.PATCH("/:id", user.Update)
		userGroup.DELETE("/:id", user.Delete)
		userGroup.POST("/:id/approval", user.RequestApproval)
		userGroup.POST("/:id/approve", user.Approve)
		userGroup.GET("/:id/communities", user.Communities)
		userGroup.GET("/:id/owned-communities", user.OwnedCommunities)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/communities")
	communityGroup.Use(auth)
	{
		communityGroup.POST("", community.Create)
		communityGroup.GET("", community.List)
		communityGroup.GET("/:id", community.Get)
		communityGroup.PATCH("/:id", community.Update)
		communityGroup.DELETE("/:id", community.Delete)
		communityGroup.POST("/:id/members", community.Join)
		communityGroup.DELETE("/:id/members", community.Leave)
		communityGroup.GET("/:id/members", community.Members)
		communityGroup.POST("/:id/messages", message.Send)
		communityGroup.GET("/:id/messages", message.List)
	}

	// 消息相关接口
	messageGroup := r.Group("/api/messages")
	messageGroup.Use(auth)
	{
		messageGroup.PATCH("/:id", message.Update)
		messageGroup.DELETE("/:id", message.Delete)
	}

	return r
}
