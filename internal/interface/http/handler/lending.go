package handler

import (
	"github.com/gin-gonic/gin"

	applending "github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LendingHandler 借阅HTTP处理器
type LendingHandler struct {
	lendUseCase       *applending.LendBookUseCase
	returnUseCase     *applending.ReturnBookUseCase
	payLateFeeUseCase *applending.PayLateFeeUseCase
	getLateFeeUseCase *applending.GetLateFeeUseCase
	listUseCase       *applending.ListTransactionsUseCase
}

// NewLendingHandler 创建借阅处理器
func NewLendingHandler(
	lendUseCase *applending.LendBookUseCase,
	returnUseCase *applending.ReturnBookUseCase,
	payLateFeeUseCase *applending.PayLateFeeUseCase,
	getLateFeeUseCase *applending.GetLateFeeUseCase,
	listUseCase *applending.ListTransactionsUseCase,
) *LendingHandler {
	return &LendingHandler{
		lendUseCase:       lendUseCase,
		returnUseCase:     returnUseCase,
		payLateFeeUseCase: payLateFeeUseCase,
		getLateFeeUseCase: getLateFeeUseCase,
		listUseCase:       listUseCase,
	}
}

// Lend 借书
// @Summary      借书
// @Description  馆员为读者办理借阅；同一读者同时只能有一笔未归还借阅
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.LendBookRequest true "借阅信息"
// @Success      201 {object} response.Response{data=applending.TransactionResponse}
// @Failure      409 {object} response.Response "读者已有未归还借阅"
// @Failure      422 {object} response.Response "无可借副本或已被预约"
// @Router       /api/v1/lend/transactions [post]
func (h *LendingHandler) Lend(c *gin.Context) {
	var req dto.LendBookRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lendUseCase.Execute(c.Request.Context(), applending.LendBookRequest{
		BookID:   req.BookID,
		UserID:   req.UserID,
		LenderID: middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Return 还书
// @Summary      还书
// @Description  逾期未缴清滞纳金时不能还书
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "借阅记录ID"
// @Success      200 {object} response.Response{data=applending.TransactionResponse}
// @Failure      409 {object} response.Response "已归还"
// @Failure      422 {object} response.Response "需先缴纳滞纳金"
// @Router       /api/v1/lend/transactions/{id}/return [put]
func (h *LendingHandler) Return(c *gin.Context) {
	result, err := h.returnUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PayLateFee 缴纳滞纳金
// @Summary      缴纳滞纳金
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "借阅记录ID"
// @Success      200 {object} response.Response{data=applending.PayLateFeeResponse}
// @Failure      422 {object} response.Response "无需缴纳"
// @Router       /api/v1/lend/transactions/{id}/late-fee [put]
func (h *LendingHandler) PayLateFee(c *gin.Context) {
	result, err := h.payLateFeeUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetLateFee 查询应付滞纳金
// @Summary      应付滞纳金
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "借阅记录ID"
// @Success      200 {object} response.Response{data=applending.LateFeeResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/lend/transactions/{id}/late-fee [get]
func (h *LendingHandler) GetLateFee(c *gin.Context) {
	result, err := h.getLateFeeUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Mine 我的借阅
// @Summary      我的借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int  false "页码"
// @Param        page_size query int  false "每页数量"
// @Param        returned  query bool false "是否已归还"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/lend/transactions/me [get]
func (h *LendingHandler) Mine(c *gin.Context) {
	h.list(c, middleware.GetUserID(c))
}

// ByUser 某读者的借阅（馆员）
// @Summary      读者借阅记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  int  true  "读者ID"
// @Param        page      query int  false "页码"
// @Param        page_size query int  false "每页数量"
// @Param        returned  query bool false "是否已归还"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/lend/transactions/users/{id} [get]
func (h *LendingHandler) ByUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	h.list(c, id)
}

// List 全部借阅（馆员），可按是否归还筛选
// @Summary      借阅记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int  false "页码"
// @Param        page_size query int  false "每页数量"
// @Param        returned  query bool false "是否已归还"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/lend/transactions [get]
func (h *LendingHandler) List(c *gin.Context) {
	h.list(c, 0)
}

func (h *LendingHandler) list(c *gin.Context, userID uint) {
	var req dto.ListTransactionsRequest
	if !bindQuery(c, &req) {
		return
	}
	page, pageSize := req.Normalize()

	result, err := h.listUseCase.Execute(c.Request.Context(), applending.ListTransactionsRequest{
		UserID:   userID,
		Returned: req.Returned,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, page, pageSize)
}
