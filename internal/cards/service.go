package cards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"nbcards/internal/database"
)

// Service 是名片仓储：负责行存储与图片对象之间的全部读写编排。
// 两个外部系统之间没有事务，一致性仅由调用顺序保证
// （替换图片先传后删，删除名片先删行后删图）。
type Service struct {
	db      *gorm.DB
	storage ObjectStorage
	baseURL string
	logger  *slog.Logger
}

// NewService 构造名片仓储。baseURL 是对外可见的站点源，用于拼接公开名片链接。
func NewService(db *gorm.DB, storage ObjectStorage, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:      db,
		storage: storage,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// CardFields 是创建与更新共用的可编辑字段集合。
// slug、qr_code、created_at 不在其中：它们由仓储自行维护。
type CardFields struct {
	Name     string
	JobTitle string
	Company  string
	Phone    string
	Email    string
	Facebook string
	Tiktok   string
	Youtube  string
	Address  string
	Color    string
}

// CreateResult 携带新建名片的关键信息，调用方无需回读即可展示二维码。
type CreateResult struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	QRURL string `json:"qr_code"`
}

// ProfileURL 返回 slug 对应的公开名片地址。
func (s *Service) ProfileURL(slug string) string {
	return fmt.Sprintf("%s/nbprintingservice/profile/%s", s.baseURL, slug)
}

// Create 创建一张名片：可选上传头像、生成唯一 slug、插入行，
// 最后把公开链接回写到 qr_code 字段。回写失败不影响调用方（仅记日志）。
func (s *Service) Create(ctx context.Context, fields CardFields, image *ImageUpload) (*CreateResult, error) {
	var imageURL *string
	if image != nil {
		uploaded, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		imageURL = &uploaded
	}

	if strings.TrimSpace(fields.Company) == "" {
		return nil, ErrMissingCompany
	}

	slug, err := s.ensureUniqueSlug(ctx, GenerateSlug(fields.Company))
	if err != nil {
		return nil, err
	}

	color := fields.Color
	if color == "" {
		color = "#3498db"
	}

	card := database.BusinessCard{
		Name:         fields.Name,
		JobTitle:     fields.JobTitle,
		Company:      fields.Company,
		Phone:        fields.Phone,
		Email:        fields.Email,
		Facebook:     fields.Facebook,
		Tiktok:       fields.Tiktok,
		Youtube:      fields.Youtube,
		Address:      fields.Address,
		Color:        color,
		ProfileImage: imageURL,
		Slug:         slug,
	}
	if err := s.db.WithContext(ctx).Create(&card).Error; err != nil {
		return nil, fmt.Errorf("insert business card: %w", err)
	}

	profileURL := s.ProfileURL(card.Slug)
	if err := s.db.WithContext(ctx).
		Model(&database.BusinessCard{}).
		Where("id = ?", card.ID).
		Update("qr_code", profileURL).Error; err != nil {
		// 行已存在且可用，qr_code 暂时为空可接受。
		s.logger.Warn("patch qr_code",
			slog.Uint64("card_id", uint64(card.ID)),
			slog.String("error", err.Error()),
		)
	}

	return &CreateResult{ID: card.ID, Slug: card.Slug, QRURL: profileURL}, nil
}

// Update 更新可编辑字段。携带新头像时先替换图片，再以一次
// Updates 调用写入全部字段；slug 创建后不可变，不会重新生成。
func (s *Service) Update(ctx context.Context, id uint, fields CardFields, image *ImageUpload) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	imageURL := current.ProfileImage
	if image != nil {
		var oldURL string
		if current.ProfileImage != nil {
			oldURL = *current.ProfileImage
		}
		replaced, err := s.replaceImage(ctx, oldURL, image)
		if err != nil {
			return err
		}
		imageURL = &replaced
	}

	updates := map[string]any{
		"name":          fields.Name,
		"job_title":     fields.JobTitle,
		"company":       fields.Company,
		"phone":         fields.Phone,
		"email":         fields.Email,
		"facebook":      fields.Facebook,
		"tiktok":        fields.Tiktok,
		"youtube":       fields.Youtube,
		"address":       fields.Address,
		"color":         fields.Color,
		"profile_image": imageURL,
	}
	if err := s.db.WithContext(ctx).
		Model(&database.BusinessCard{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update business card %d: %w", id, err)
	}

	return nil
}

// Delete 删除名片：先删行，行删除失败则中止且不碰图片；
// 行删除成功后尽力删除头像对象，失败只记录日志。
func (s *Service) Delete(ctx context.Context, id uint) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&database.BusinessCard{}, id).Error; err != nil {
		return fmt.Errorf("delete business card %d: %w", id, err)
	}

	if current.ProfileImage != nil {
		s.removeImage(ctx, *current.ProfileImage)
	}

	return nil
}

// Get 按 ID 读取一张名片。
func (s *Service) Get(ctx context.Context, id uint) (*database.BusinessCard, error) {
	var card database.BusinessCard
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query business card %d: %w", id, err)
	}
	return &card, nil
}

// GetBySlug 按 slug 读取一张名片（公开页使用）。
func (s *Service) GetBySlug(ctx context.Context, slug string) (*database.BusinessCard, error) {
	var card database.BusinessCard
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query business card %q: %w", slug, err)
	}
	return &card, nil
}

// List 返回全部名片，按创建时间倒序。
func (s *Service) List(ctx context.Context) ([]database.BusinessCard, error) {
	var cardList []database.BusinessCard
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&cardList).Error; err != nil {
		return nil, fmt.Errorf("list business cards: %w", err)
	}
	return cardList, nil
}
