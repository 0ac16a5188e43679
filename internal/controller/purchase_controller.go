package controller

import (
	"course_platform/internal/service"
	"course_platform/internal/util"
	"course_platform/pkg/logger"
	"course_platform/pkg/monitoring"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseController struct {
	PurchaseService   *service.PurchaseService
	EnrollmentService *service.EnrollmentService
	DashboardService  *service.DashboardService
	Payments          service.PaymentProvider
}

func NewPurchaseController(
	purchaseService *service.PurchaseService,
	enrollmentService *service.EnrollmentService,
	dashboardService *service.DashboardService,
	payments service.PaymentProvider,
) *PurchaseController {
	return &PurchaseController{
		PurchaseService:   purchaseService,
		EnrollmentService: enrollmentService,
		DashboardService:  dashboardService,
		Payments:          payments,
	}
}

// CheckoutRequest 发起结账请求
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// CreateCheckoutSession godoc
// @Summary 创建支付会话
// @Tags 购买
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CheckoutRequest true "课程ID"
// @Success 200 {object} util.Response{data=model.CheckoutSession}
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 502 {object} util.Response "支付服务异常"
// @Router /api/v1/purchase/checkout/create-checkout-session [post]
func (c *PurchaseController) CreateCheckoutSession(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "courseId is required")
		return
	}

	session, err := c.PurchaseService.InitiateCheckout(ctx.Request.Context(), currentUserID(ctx), req.CourseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// StripeWebhook godoc
// @Summary Stripe 回调
// @Description 校验签名后处理 checkout.session.completed，其余事件直接确认
// @Tags 购买
// @Accept  json
// @Produce  json
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "签名无效"
// @Failure 500 {object} util.Response "处理失败，等待重投"
// @Router /api/v1/purchase/webhook [post]
func (c *PurchaseController) StripeWebhook(ctx *gin.Context) {
	payload, err := ctx.GetRawData()
	if err != nil {
		util.BadRequest(ctx, "unable to read request body")
		return
	}

	event, err := c.Payments.ParseWebhookEvent(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		monitoring.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		logger.Log.Warn("webhook signature rejected", zap.Error(err))
		util.HandleError(ctx, err)
		return
	}

	handled, err := c.EnrollmentService.HandlePaymentEvent(ctx.Request.Context(), event)
	if err != nil {
		monitoring.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
		logger.Log.Error("webhook reconciliation failed",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err))
		// 非 2xx 响应让支付方重投
		util.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	outcome := "ignored"
	if handled {
		outcome = "processed"
	}
	monitoring.WebhookEvents.WithLabelValues(event.Type, outcome).Inc()
	util.Success(ctx, gin.H{"received": true})
}

// GetCourseDetailWithPurchaseStatus godoc
// @Summary 课程详情及购买状态
// @Tags 购买
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseWithPurchaseStatus}
// @Failure 404 {object} util.Response
// @Router /api/v1/purchase/course/{courseId}/detail-with-status [get]
func (c *PurchaseController) GetCourseDetailWithPurchaseStatus(ctx *gin.Context) {
	details, err := c.PurchaseService.GetCourseDetailsWithPurchaseStatus(ctx.Request.Context(), currentUserID(ctx), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// GetAllPurchasedCourse godoc
// @Summary 全部已完成购买
// @Tags 购买
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CoursePurchase}
// @Router /api/v1/purchase [get]
func (c *PurchaseController) GetAllPurchasedCourse(ctx *gin.Context) {
	purchases, err := c.PurchaseService.ListCompletedPurchases(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, purchases)
}

// GetInstructorDashboard godoc
// @Summary 讲师仪表盘
// @Tags 购买
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.InstructorDashboard}
// @Router /api/v1/purchase/instructor/dashboard [get]
func (c *PurchaseController) GetInstructorDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.ComputeInstructorDashboard(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}
