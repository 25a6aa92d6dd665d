package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出品側のプロフィールとディール管理
type VendorHandler struct {
	vendorUC *usecase.VendorUsecase
	dealUC   *usecase.DealUsecase
}

func NewVendorHandler(vendorUC *usecase.VendorUsecase, dealUC *usecase.DealUsecase) *VendorHandler {
	return &VendorHandler{vendorUC: vendorUC, dealUC: dealUC}
}

type UpsertVendorRequest struct {
	BusinessName string `json:"business_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	OrderTime    string `json:"order_time"`
}

type CreateDealRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Stock       int64      `json:"stock"`
	ReadyTime   *time.Time `json:"ready_time"`
}

type UpdateDealRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Stock       int64      `json:"stock"`
	IsActive    bool       `json:"is_active"`
	ReadyTime   *time.Time `json:"ready_time"`
}

// /vendors 配下はVENDORロール必須
func (h *VendorHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/vendors")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.VendorRoleGuard())

	g.GET("/me", h.getProfile)
	g.PUT("/me", h.upsertProfile)
	g.POST("/deals", h.createDeal)
	g.PATCH("/deals/:id", h.updateDeal)
}

func (h *VendorHandler) getProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.vendorUC.GetMyProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) upsertProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpsertVendorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.vendorUC.UpsertMyProfile(c.Request().Context(), userID, usecase.UpsertVendorInput{
		BusinessName: req.BusinessName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		Phone:        req.Phone,
		OrderTime:    req.OrderTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) createDeal(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateDealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.dealUC.CreateDeal(c.Request().Context(), userID, usecase.CreateDealInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ReadyTime:   req.ReadyTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) updateDeal(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateDealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.dealUC.UpdateDeal(c.Request().Context(), userID, dealID, usecase.UpdateDealInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		ReadyTime:   req.ReadyTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
