package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	appshelf "github.com/xiebiao/library/internal/application/shelf"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// ShelfHandler 书架HTTP处理器
type ShelfHandler struct {
	createUseCase *appshelf.CreateShelfUseCase
	updateUseCase *appshelf.UpdateShelfUseCase
	deleteUseCase *appshelf.DeleteShelfUseCase
	getUseCase    *appshelf.GetShelfUseCase
	listUseCase   *appshelf.ListShelvesUseCase
	booksUseCase  *appbook.ListBooksUseCase
}

// NewShelfHandler 创建书架处理器
func NewShelfHandler(
	createUseCase *appshelf.CreateShelfUseCase,
	updateUseCase *appshelf.UpdateShelfUseCase,
	deleteUseCase *appshelf.DeleteShelfUseCase,
	getUseCase *appshelf.GetShelfUseCase,
	listUseCase *appshelf.ListShelvesUseCase,
	booksUseCase *appbook.ListBooksUseCase,
) *ShelfHandler {
	return &ShelfHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
		booksUseCase:  booksUseCase,
	}
}

// Create 新建书架
// @Summary      新建书架
// @Tags         书架
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateShelfRequest true "书架信息"
// @Success      201 {object} response.Response{data=appshelf.ShelfResponse}
// @Failure      409 {object} response.Response "书架名已存在"
// @Router       /api/v1/shelves [post]
func (h *ShelfHandler) Create(c *gin.Context) {
	var req dto.CreateShelfRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appshelf.CreateShelfRequest{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update 修改书架名称或容量
// @Summary      修改书架
// @Tags         书架
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "书架ID"
// @Param        request body dto.UpdateShelfRequest true "修改内容"
// @Success      200 {object} response.Response{data=appshelf.ShelfResponse}
// @Failure      422 {object} response.Response "容量小于已放置的图书数"
// @Router       /api/v1/shelves/{id} [put]
func (h *ShelfHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShelfRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appshelf.UpdateShelfRequest{
		ShelfID:  id,
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除空书架
// @Summary      删除书架
// @Tags         书架
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书架ID"
// @Success      200 {object} response.Response
// @Failure      422 {object} response.Response "书架上还有图书"
// @Router       /api/v1/shelves/{id} [delete]
func (h *ShelfHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Get 书架详情
// @Summary      书架详情
// @Tags         书架
// @Produce      json
// @Param        id path int true "书架ID"
// @Success      200 {object} response.Response{data=appshelf.ShelfResponse}
// @Failure      404 {object} response.Response "书架不存在"
// @Router       /api/v1/shelves/{id} [get]
func (h *ShelfHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 书架列表
// @Summary      书架列表
// @Tags         书架
// @Produce      json
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/shelves [get]
func (h *ShelfHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, pageSize := q.Normalize()

	result, err := h.listUseCase.Execute(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, page, pageSize)
}

// Books 书架上的图书
// @Summary      书架上的图书
// @Tags         书架
// @Produce      json
// @Param        id        path  int true  "书架ID"
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/shelves/{id}/books [get]
func (h *ShelfHandler) Books(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, pageSize := q.Normalize()

	result, err := h.booksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     page,
		PageSize: pageSize,
		ShelfID:  id,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, page, pageSize)
}
