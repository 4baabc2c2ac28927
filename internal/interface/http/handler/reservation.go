package handler

import (
	"github.com/gin-gonic/gin"

	appreservation "github.com/xiebiao/library/internal/application/reservation"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// ReservationHandler 预约HTTP处理器
type ReservationHandler struct {
	reserveUseCase *appreservation.ReserveBookUseCase
	updateUseCase  *appreservation.UpdateReservationUseCase
	cancelUseCase  *appreservation.CancelReservationUseCase
	listUseCase    *appreservation.ListReservationsUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	reserveUseCase *appreservation.ReserveBookUseCase,
	updateUseCase *appreservation.UpdateReservationUseCase,
	cancelUseCase *appreservation.CancelReservationUseCase,
	listUseCase *appreservation.ListReservationsUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		reserveUseCase: reserveUseCase,
		updateUseCase:  updateUseCase,
		cancelUseCase:  cancelUseCase,
		listUseCase:    listUseCase,
	}
}

// Reserve 预约图书
// @Summary      预约图书
// @Description  预约某日借阅；当日预计可借数量不足时拒绝
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path int                     true "图书ID"
// @Param        request body dto.ReservationRequest true "预约日期"
// @Success      201 {object} response.Response{data=appreservation.ReservationResponse}
// @Failure      409 {object} response.Response "已有未完成的预约"
// @Failure      422 {object} response.Response "该日期不可预约"
// @Router       /api/v1/reservations/books/{bookId} [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	bookID, ok := uintParam(c, "bookId")
	if !ok {
		return
	}
	var req dto.ReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reserveUseCase.Execute(c.Request.Context(), appreservation.ReserveBookRequest{
		BookID: bookID,
		UserID: middleware.GetUserID(c),
		Date:   req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update 修改预约日期
// @Summary      修改预约
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "预约ID"
// @Param        request body dto.ReservationRequest true "新日期"
// @Success      200 {object} response.Response{data=appreservation.ReservationResponse}
// @Failure      403 {object} response.Response "不是自己的预约"
// @Failure      409 {object} response.Response "预约已完成"
// @Router       /api/v1/reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appreservation.UpdateReservationRequest{
		ReservationID: id,
		ActorID:       middleware.GetUserID(c),
		ActorIsStaff:  isStaff(c),
		Date:          req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 取消预约
// @Summary      取消预约
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=appreservation.ReservationResponse}
// @Failure      403 {object} response.Response "不是自己的预约"
// @Router       /api/v1/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), appreservation.CancelReservationRequest{
		ReservationID: id,
		ActorID:       middleware.GetUserID(c),
		ActorIsStaff:  isStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 预约列表
// 读者只能查看自己的预约，馆员可按读者筛选
// @Summary      预约列表
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        user_id   query int false "读者ID（馆员）"
// @Param        book_id   query int false "图书ID"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	var req dto.ListReservationsRequest
	if !bindQuery(c, &req) {
		return
	}
	page, pageSize := req.Normalize()

	userID := req.UserID
	if !isStaff(c) {
		userID = middleware.GetUserID(c)
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appreservation.ListReservationsRequest{
		UserID:   userID,
		BookID:   req.BookID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, page, pageSize)
}
