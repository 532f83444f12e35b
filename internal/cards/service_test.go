package cards

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nbcards/internal/database"
)

type fakeStorage struct {
	uploaded map[string][]byte

	deleted []string

	failUpload bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	if s.failUpload {
		return nil, errors.New("storage unavailable")
	}
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) PublicObjectURL(objectKey string) string {
	return "https://storage.example.invalid/profile_images/" + objectKey
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.BusinessCard{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *fakeStorage, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	storage := newFakeStorage()
	svc := NewService(db, storage, "https://cards.example.invalid", slog.Default())
	return svc, storage, db
}

func pngUpload(contentType string) *ImageUpload {
	return &ImageUpload{
		Reader:      strings.NewReader("\x89PNG\r\n\x1a\n"),
		Size:        8,
		ContentType: contentType,
	}
}

func countCards(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&database.BusinessCard{}).Count(&count).Error; err != nil {
		t.Fatalf("count cards: %v", err)
	}
	return count
}

func TestCreate_NoImage(t *testing.T) {
	svc, storage, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Create(ctx, CardFields{Name: "Nyein", Company: "Acme Corp!"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Slug != "acmecorp" {
		t.Fatalf("expected slug acmecorp, got %q", result.Slug)
	}
	wantURL := "https://cards.example.invalid/nbprintingservice/profile/acmecorp"
	if result.QRURL != wantURL {
		t.Fatalf("expected qr url %q, got %q", wantURL, result.QRURL)
	}

	card, err := svc.Get(ctx, result.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if card.ProfileImage != nil {
		t.Fatalf("expected nil profile image, got %q", *card.ProfileImage)
	}
	if card.QRCode == nil || *card.QRCode != wantURL {
		t.Fatalf("expected qr_code patched to %q, got %v", wantURL, card.QRCode)
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("expected no uploads, got %d", len(storage.uploaded))
	}
}

func TestCreate_WithImage(t *testing.T) {
	svc, storage, _ := newTestService(t)

	result, err := svc.Create(context.Background(), CardFields{Company: "Acme"}, pngUpload("image/png"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(storage.uploaded) != 1 {
		t.Fatalf("expected one uploaded object, got %d", len(storage.uploaded))
	}

	card, err := svc.Get(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if card.ProfileImage == nil || !strings.Contains(*card.ProfileImage, "profile_") {
		t.Fatalf("expected profile image url, got %v", card.ProfileImage)
	}
}

func TestCreate_MissingCompany(t *testing.T) {
	svc, _, db := newTestService(t)

	_, err := svc.Create(context.Background(), CardFields{Name: "Nyein", Company: "   "}, nil)
	if !errors.Is(err, ErrMissingCompany) {
		t.Fatalf("expected ErrMissingCompany, got %v", err)
	}
	if got := countCards(t, db); got != 0 {
		t.Fatalf("expected no rows, got %d", got)
	}
}

func TestCreate_InvalidFileType(t *testing.T) {
	svc, storage, db := newTestService(t)

	_, err := svc.Create(context.Background(), CardFields{Company: "Acme"}, pngUpload("text/plain"))
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("expected ErrInvalidFileType, got %v", err)
	}
	if got := countCards(t, db); got != 0 {
		t.Fatalf("expected no rows, got %d", got)
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("expected no uploads, got %d", len(storage.uploaded))
	}
}

func TestCreate_UploadFailed(t *testing.T) {
	svc, storage, db := newTestService(t)
	storage.failUpload = true

	_, err := svc.Create(context.Background(), CardFields{Company: "Acme"}, pngUpload("image/png"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if got := countCards(t, db); got != 0 {
		t.Fatalf("expected no rows, got %d", got)
	}
}

func TestCreate_SlugCollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CardFields{Company: "Acme Corp"}, nil)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	second, err := svc.Create(ctx, CardFields{Company: "Acme Corp"}, nil)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Slug == first.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, first.Slug+"-") {
		t.Fatalf("expected %q to extend %q with a numeric suffix", second.Slug, first.Slug)
	}
}

func TestUpdate_ReplacesImage(t *testing.T) {
	svc, storage, db := newTestService(t)
	ctx := context.Background()

	oldURL := storage.PublicObjectURL("profile_old.png")
	seed := database.BusinessCard{Company: "Acme", Slug: "acme", ProfileImage: &oldURL}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	if err := svc.Update(ctx, seed.ID, CardFields{Company: "Acme", Color: "#112233"}, pngUpload("image/png")); err != nil {
		t.Fatalf("update: %v", err)
	}

	card, err := svc.Get(ctx, seed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if card.ProfileImage == nil || *card.ProfileImage == oldURL {
		t.Fatalf("expected a new profile image url, got %v", card.ProfileImage)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "profile_old.png" {
		t.Fatalf("expected exactly one delete of profile_old.png, got %v", storage.deleted)
	}
	if card.Color != "#112233" {
		t.Fatalf("expected color updated, got %q", card.Color)
	}
	if card.Slug != "acme" {
		t.Fatalf("slug must not change on update, got %q", card.Slug)
	}
}

func TestUpdate_NoImageKeepsCurrentURL(t *testing.T) {
	svc, storage, db := newTestService(t)
	ctx := context.Background()

	oldURL := storage.PublicObjectURL("profile_keep.png")
	seed := database.BusinessCard{Company: "Acme", Slug: "acme", ProfileImage: &oldURL}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	if err := svc.Update(ctx, seed.ID, CardFields{Company: "Acme", Name: "Renamed"}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	card, err := svc.Get(ctx, seed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if card.ProfileImage == nil || *card.ProfileImage != oldURL {
		t.Fatalf("expected image url unchanged, got %v", card.ProfileImage)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("expected no blob deletes, got %v", storage.deleted)
	}
	if card.Name != "Renamed" {
		t.Fatalf("expected name updated, got %q", card.Name)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Update(context.Background(), 999, CardFields{Company: "Acme"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_RemovesRowAndBlob(t *testing.T) {
	svc, storage, db := newTestService(t)
	ctx := context.Background()

	imageURL := storage.PublicObjectURL("profile_gone.png")
	seed := database.BusinessCard{Company: "Acme", Slug: "acme", ProfileImage: &imageURL}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	if err := svc.Delete(ctx, seed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, seed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "profile_gone.png" {
		t.Fatalf("expected exactly one delete of profile_gone.png, got %v", storage.deleted)
	}
}

func TestDelete_NoImage(t *testing.T) {
	svc, storage, db := newTestService(t)
	ctx := context.Background()

	seed := database.BusinessCard{Company: "Acme", Slug: "acme"}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	if err := svc.Delete(ctx, seed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("expected no blob deletes, got %v", storage.deleted)
	}
}

func TestGetBySlug(t *testing.T) {
	svc, _, db := newTestService(t)

	seed := database.BusinessCard{Company: "Acme", Slug: "acme"}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	card, err := svc.GetBySlug(context.Background(), "acme")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if card.ID != seed.ID {
		t.Fatalf("expected card %d, got %d", seed.ID, card.ID)
	}

	if _, err := svc.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
