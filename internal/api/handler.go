package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/control"
	"github.com/mmhmddd/PowerEV-sub000/internal/dashboard"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/service"
	"github.com/mmhmddd/PowerEV-sub000/internal/session"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

// cartSessionHeader carries the anonymous storefront session id. The
// gateway issues one on first contact and echoes it back on every
// response.
const cartSessionHeader = "X-Cart-Session"

// Handler contains HTTP handlers
type Handler struct {
	products  map[string]*control.Controller[models.Product]
	orders    *control.OrderController
	users     *control.UserController
	gallery   *control.Controller[models.GalleryItem]
	dashboard *dashboard.Aggregator
	carts     *service.CartService
	auth      *backend.AuthClient
	session   *session.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products map[string]*control.Controller[models.Product],
	orders *control.OrderController,
	users *control.UserController,
	gallery *control.Controller[models.GalleryItem],
	dash *dashboard.Aggregator,
	carts *service.CartService,
	auth *backend.AuthClient,
	sessions *session.Store,
) *Handler {
	return &Handler{
		products:  products,
		orders:    orders,
		users:     users,
		gallery:   gallery,
		dashboard: dash,
		carts:     carts,
		auth:      auth,
		session:   sessions,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.login)
			auth.POST("/logout", h.logout)
			auth.POST("/forgot-password", h.forgotPassword)
			auth.POST("/reset-password/:token", h.resetPassword)
			auth.GET("/me", h.me)
		}

		v1.GET("/preferences", h.getPreferences)
		v1.PUT("/preferences", h.setPreferences)

		admin := v1.Group("/admin")
		{
			admin.GET("/catalog/:category", h.listProducts)
			admin.POST("/catalog/:category", h.createProduct)
			admin.PUT("/catalog/:category/:id", h.updateProduct)
			admin.DELETE("/catalog/:category/:id", h.deleteProduct)
			admin.POST("/catalog/:category/bulk-delete", h.bulkDeleteProducts)

			admin.GET("/orders", h.listOrders)
			admin.PUT("/orders/:id", h.updateOrder)
			admin.DELETE("/orders/:id", h.deleteOrder)
			admin.POST("/orders/bulk-delete", h.bulkDeleteOrders)
			admin.PUT("/orders/:id/status", h.updateOrderStatus)
			admin.PUT("/orders/:id/payment-status", h.updateOrderPaymentStatus)

			admin.GET("/users", h.listUsers)
			admin.POST("/users", h.createUser)
			admin.PUT("/users/:id", h.updateUser)
			admin.DELETE("/users/:id", h.deleteUser)
			admin.PUT("/users/:id/password", h.resetUserPassword)

			admin.GET("/gallery", h.listGallery)
			admin.POST("/gallery", h.createGalleryItem)
			admin.PUT("/gallery/:id", h.updateGalleryItem)
			admin.DELETE("/gallery/:id", h.deleteGalleryItem)

			admin.GET("/dashboard/summary", h.dashboardSummary)
			admin.GET("/dashboard/departments", h.dashboardDepartments)
			admin.GET("/dashboard/chart", h.dashboardChart)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", h.getCart)
			cart.DELETE("", h.clearCart)
			cart.POST("/items", h.addCartItem)
			cart.PUT("/items/:id", h.updateCartItem)
			cart.DELETE("/items/:id", h.removeCartItem)
		}
		v1.POST("/checkout", h.checkout)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// --- auth ---

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.session.SetToken(ctx, result.Token); err != nil {
		writeError(c, err)
		return
	}
	if err := h.session.SetCurrentUser(ctx, result.User); err != nil {
		writeError(c, err)
		return
	}
	email := ""
	if req.Remember {
		email = req.Email
	}
	if err := h.session.SetRememberedEmail(ctx, email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": result.User})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset email sent"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) getPreferences(c *gin.Context) {
	ctx := c.Request.Context()
	theme, err := h.session.Theme(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	email, err := h.session.RememberedEmail(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme, "rememberedEmail": email})
}

func (h *Handler) setPreferences(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.session.SetTheme(c.Request.Context(), req.Theme); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

// --- catalog screens ---

func (h *Handler) productScreen(c *gin.Context) (*control.Controller[models.Product], bool) {
	ctl, ok := h.products[c.Param("category")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown category"})
		return nil, false
	}
	return ctl, true
}

// filtersFromQuery maps query parameters onto the screen filter: search
// and stock are reserved keys, everything else is a facet.
func filtersFromQuery(c *gin.Context) control.Filters {
	f := control.Filters{
		Search: c.Query("search"),
		Stock:  c.Query("stock"),
		Facets: map[string]string{},
	}
	for key, values := range c.Request.URL.Query() {
		if key == "search" || key == "stock" || len(values) == 0 || values[0] == "" {
			continue
		}
		f.Facets[key] = values[0]
	}
	return f
}

func (h *Handler) listProducts(c *gin.Context) {
	ctl, ok := h.productScreen(c)
	if !ok {
		return
	}
	if err := ctl.Load(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	ctl.SetFilters(filtersFromQuery(c))
	vm := ctl.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data":    vm.FilteredEntities(),
		"options": vm.Options,
	})
}

func (h *Handler) createProduct(c *gin.Context) {
	ctl, ok := h.productScreen(c)
	if !ok {
		return
	}
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctl.OpenCreate()
	if err := ctl.SetDraftEntity(product); err != nil {
		writeError(c, err)
		return
	}
	if err := ctl.Save(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": ctl.Snapshot().Toast})
}

func (h *Handler) updateProduct(c *gin.Context) {
	ctl, ok := h.productScreen(c)
	if !ok {
		return
	}
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	product.ID = c.Param("id")

	ctx := c.Request.Context()
	if err := ctl.Load(ctx); err != nil {
		writeError(c, err)
		return
	}
	if err := ctl.OpenEdit(product.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err := ctl.SetDraftEntity(product); err != nil {
		writeError(c, err)
		return
	}
	if err := ctl.Save(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ctl.Snapshot().Toast})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	ctl, ok := h.productScreen(c)
	if !ok {
		return
	}
	h.deleteEntities(c, func() error {
		return ctl.DeleteMany(c.Request.Context(), []string{c.Param("id")})
	})
}

func (h *Handler) bulkDeleteProducts(c *gin.Context) {
	ctl, ok := h.productScreen(c)
	if !ok {
		return
	}
	ids, ok := bindIDs(c)
	if !ok {
		return
	}
	h.deleteEntities(c, func() error {
		return ctl.DeleteMany(c.Request.Context(), ids)
	})
}

func bindIDs(c *gin.Context) ([]string, bool) {
	var req struct {
		IDs []string `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return nil, false
	}
	return req.IDs, true
}

// deleteEntities runs a delete batch. A partial failure maps to 502 so the
// caller knows some rows may be gone while others remain.
func (h *Handler) deleteEntities(c *gin.Context, del func() error) {
	if err := del(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// --- orders ---

func (h *Handler) listOrders(c *gin.Context) {
	if err := h.orders.Load(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.orders.SetFilters(filtersFromQuery(c))
	vm := h.orders.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data":    vm.FilteredEntities(),
		"options": vm.Options,
	})
}

func (h *Handler) updateOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	order.ID = c.Param("id")

	ctx := c.Request.Context()
	if err := h.orders.Load(ctx); err != nil {
		writeError(c, err)
		return
	}
	if err := h.orders.OpenEdit(order.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err := h.orders.SetDraftEntity(order); err != nil {
		writeError(c, err)
		return
	}
	if err := h.orders.Save(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.orders.Snapshot().Toast})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	h.deleteEntities(c, func() error {
		return h.orders.DeleteMany(c.Request.Context(), []string{c.Param("id")})
	})
}

func (h *Handler) bulkDeleteOrders(c *gin.Context) {
	ids, ok := bindIDs(c)
	if !ok {
		return
	}
	h.deleteEntities(c, func() error {
		return h.orders.DeleteMany(c.Request.Context(), ids)
	})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.orders.Snapshot().Toast})
}

func (h *Handler) updateOrderPaymentStatus(c *gin.Context) {
	var req struct {
		PaymentStatus string `json:"paymentStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.orders.Snapshot().Toast})
}

// --- users ---

func (h *Handler) listUsers(c *gin.Context) {
	if err := h.users.Load(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.users.SetFilters(filtersFromQuery(c))
	vm := h.users.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data":    vm.FilteredEntities(),
		"options": vm.Options,
	})
}

func (h *Handler) createUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.users.OpenCreate()
	if err := h.users.SetDraftEntity(user); err != nil {
		writeError(c, err)
		return
	}
	if err := h.users.Save(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.users.Snapshot().Toast})
}

func (h *Handler) updateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	user.ID = c.Param("id")
	user.Password = ""

	ctx := c.Request.Context()
	if err := h.users.Load(ctx); err != nil {
		writeError(c, err)
		return
	}
	if err := h.users.OpenEdit(user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := h.users.SetDraftEntity(user); err != nil {
		writeError(c, err)
		return
	}
	if err := h.users.Save(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.users.Snapshot().Toast})
}

func (h *Handler) deleteUser(c *gin.Context) {
	h.deleteEntities(c, func() error {
		return h.users.DeleteMany(c.Request.Context(), []string{c.Param("id")})
	})
}

func (h *Handler) resetUserPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.users.Snapshot().Toast})
}

// --- gallery ---

func (h *Handler) listGallery(c *gin.Context) {
	if err := h.gallery.Load(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.gallery.SetFilters(filtersFromQuery(c))
	vm := h.gallery.Snapshot()
	c.JSON(http.StatusOK, gin.H{"data": vm.FilteredEntities()})
}

func (h *Handler) createGalleryItem(c *gin.Context) {
	var item models.GalleryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.gallery.OpenCreate()
	if err := h.gallery.SetDraftEntity(item); err != nil {
		writeError(c, err)
		return
	}
	if err := h.gallery.Save(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.gallery.Snapshot().Toast})
}

func (h *Handler) updateGalleryItem(c *gin.Context) {
	var item models.GalleryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	item.ID = c.Param("id")

	ctx := c.Request.Context()
	if err := h.gallery.Load(ctx); err != nil {
		writeError(c, err)
		return
	}
	if err := h.gallery.OpenEdit(item.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery item not found"})
		return
	}
	if err := h.gallery.SetDraftEntity(item); err != nil {
		writeError(c, err)
		return
	}
	if err := h.gallery.Save(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.gallery.Snapshot().Toast})
}

func (h *Handler) deleteGalleryItem(c *gin.Context) {
	h.deleteEntities(c, func() error {
		return h.gallery.DeleteMany(c.Request.Context(), []string{c.Param("id")})
	})
}

// --- dashboard ---

func (h *Handler) dashboardSummary(c *gin.Context) {
	stats := h.dashboard.LoadStatistics(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardDepartments(c *gin.Context) {
	counts := h.dashboard.DepartmentCounts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"departments": counts})
}

func (h *Handler) dashboardChart(c *gin.Context) {
	r := dashboard.Range(c.DefaultQuery("range", string(dashboard.RangeWeek)))
	data, err := h.dashboard.ChartData(c.Request.Context(), r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// --- storefront cart ---

// cartSession resolves the cart session id: the request header wins, then
// the id remembered in the session store, and a fresh one is minted and
// persisted otherwise. The id always echoes back on the response header.
func (h *Handler) cartSession(c *gin.Context) string {
	ctx := c.Request.Context()
	id := c.GetHeader(cartSessionHeader)
	if id == "" {
		id, _ = h.session.CartSession(ctx)
	}
	if id == "" {
		id = uuid.New().String()
		if err := h.session.SetCartSession(ctx, id); err != nil {
			util.GetLogger().Warn("Failed to persist cart session id", zap.Error(err))
		}
	}
	c.Header(cartSessionHeader, id)
	return id
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), h.cartSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addCartItemRequest struct {
	Category  string `json:"category" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	category, ok := models.ParseCategory(req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), h.cartSession(c), category, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), h.cartSession(c), itemID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), h.cartSession(c), itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), h.cartSession(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

func (h *Handler) checkout(c *gin.Context) {
	var info service.CheckoutInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	order, err := h.carts.PlaceOrder(c.Request.Context(), h.cartSession(c), info)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// writeError maps domain failures onto HTTP statuses: local validation is
// a 400, an upstream rejection keeps its status, anything else is a 500.
func writeError(c *gin.Context, err error) {
	var verr *control.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
