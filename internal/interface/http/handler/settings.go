package handler

import (
	"github.com/gin-gonic/gin"

	appsettings "github.com/xiebiao/library/internal/application/settings"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// SettingsHandler 系统设置HTTP处理器
type SettingsHandler struct {
	getUseCase        *appsettings.GetSettingsUseCase
	updateFeeUseCase  *appsettings.UpdateLateFeeUseCase
	updateDaysUseCase *appsettings.UpdateLendDayUseCase
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(
	getUseCase *appsettings.GetSettingsUseCase,
	updateFeeUseCase *appsettings.UpdateLateFeeUseCase,
	updateDaysUseCase *appsettings.UpdateLendDayUseCase,
) *SettingsHandler {
	return &SettingsHandler{
		getUseCase:        getUseCase,
		updateFeeUseCase:  updateFeeUseCase,
		updateDaysUseCase: updateDaysUseCase,
	}
}

// GetLateFee 每日滞纳金
// @Summary      每日滞纳金
// @Tags         设置
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appsettings.SettingsResponse}
// @Router       /api/v1/settings/late-fee [get]
func (h *SettingsHandler) GetLateFee(c *gin.Context) {
	h.get(c)
}

// GetLendDay 借阅天数
// @Summary      借阅天数
// @Tags         设置
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appsettings.SettingsResponse}
// @Router       /api/v1/settings/lend-day [get]
func (h *SettingsHandler) GetLendDay(c *gin.Context) {
	h.get(c)
}

func (h *SettingsHandler) get(c *gin.Context) {
	result, err := h.getUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateLateFee 修改每日滞纳金（管理员）
// @Summary      修改每日滞纳金
// @Tags         设置
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateLateFeeRequest true "每日滞纳金"
// @Success      200 {object} response.Response{data=appsettings.SettingsResponse}
// @Failure      400 {object} response.Response "金额为负"
// @Router       /api/v1/settings/late-fee [put]
func (h *SettingsHandler) UpdateLateFee(c *gin.Context) {
	var req dto.UpdateLateFeeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.updateFeeUseCase.Execute(c.Request.Context(), req.LateFee); err != nil {
		response.Error(c, err)
		return
	}
	h.get(c)
}

// UpdateLendDay 修改借阅天数（管理员）
// @Summary      修改借阅天数
// @Tags         设置
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateLendDayRequest true "借阅天数"
// @Success      200 {object} response.Response{data=appsettings.SettingsResponse}
// @Failure      400 {object} response.Response "天数超出范围"
// @Router       /api/v1/settings/lend-day [put]
func (h *SettingsHandler) UpdateLendDay(c *gin.Context) {
	var req dto.UpdateLendDayRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.updateDaysUseCase.Execute(c.Request.Context(), req.LendDay); err != nil {
		response.Error(c, err)
		return
	}
	h.get(c)
}
