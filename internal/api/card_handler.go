package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nbcards/internal/api/middleware"
	"nbcards/internal/cards"
)

// CardHandler 负责处理名片相关的 API 请求。
type CardHandler struct {
	svc *cards.Service
}

// NewCardHandler 构造 CardHandler。
func NewCardHandler(svc *cards.Service) *CardHandler {
	return &CardHandler{svc: svc}
}

var errInvalidCardID = errors.New("invalid card id")

// cardFieldsFromForm 从 multipart 表单取出可编辑字段。
func cardFieldsFromForm(c *gin.Context) cards.CardFields {
	return cards.CardFields{
		Name:     c.PostForm("name"),
		JobTitle: c.PostForm("job_title"),
		Company:  c.PostForm("company"),
		Phone:    c.PostForm("phone"),
		Email:    c.PostForm("email"),
		Facebook: c.PostForm("facebook"),
		Tiktok:   c.PostForm("tiktok"),
		Youtube:  c.PostForm("youtube"),
		Address:  c.PostForm("address"),
		Color:    c.PostForm("color"),
	}
}

// imageUploadFromForm 取出可选的头像文件。未携带文件时返回 nil。
func imageUploadFromForm(c *gin.Context) (*cards.ImageUpload, io.Closer, error) {
	fileHeader, err := c.FormFile("profile_image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	return &cards.ImageUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, file, nil
}

func respondCardError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, cards.ErrInvalidFileType),
		errors.Is(err, cards.ErrMissingCompany):
		BadRequest(c, err.Error())
	case errors.Is(err, cards.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, cards.ErrUploadFailed):
		middleware.LoggerFromContext(c).Error("upload image", slog.String("error", err.Error()))
		Internal(c, cards.ErrUploadFailed.Error())
	default:
		middleware.LoggerFromContext(c).Error(fallback, slog.String("error", err.Error()))
		Internal(c, fallback)
	}
}

func cardIDFromParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errInvalidCardID
	}
	return uint(id), nil
}

// CreateCard 创建一张名片，返回新 ID、slug 与公开链接。
func (h *CardHandler) CreateCard(c *gin.Context) {
	image, closer, err := imageUploadFromForm(c)
	if err != nil {
		BadRequest(c, "invalid profile image upload")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.svc.Create(c.Request.Context(), cardFieldsFromForm(c), image)
	if err != nil {
		respondCardError(c, err, "failed to create business card")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListCards 列出全部名片。
func (h *CardHandler) ListCards(c *gin.Context) {
	cardList, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondCardError(c, err, "failed to list business cards")
		return
	}
	c.JSON(http.StatusOK, cardList)
}

// GetCard 返回指定 ID 的名片（编辑表单回填用）。
func (h *CardHandler) GetCard(c *gin.Context) {
	id, err := cardIDFromParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	card, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondCardError(c, err, "failed to query business card")
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateCard 更新指定名片，可携带新头像。
func (h *CardHandler) UpdateCard(c *gin.Context) {
	id, err := cardIDFromParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	image, closer, err := imageUploadFromForm(c)
	if err != nil {
		BadRequest(c, "invalid profile image upload")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := h.svc.Update(c.Request.Context(), id, cardFieldsFromForm(c), image); err != nil {
		respondCardError(c, err, "failed to update business card")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteCard 删除指定名片及其头像。
func (h *CardHandler) DeleteCard(c *gin.Context) {
	id, err := cardIDFromParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondCardError(c, err, "failed to delete business card")
		return
	}

	c.Status(http.StatusNoContent)
}

// PublicProfile 按 slug 返回公开名片数据。
func (h *CardHandler) PublicProfile(c *gin.Context) {
	card, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondCardError(c, err, "failed to query business card")
		return
	}
	c.JSON(http.StatusOK, card)
}
