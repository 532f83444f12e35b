package database

import "time"

// BusinessCard 表示一张数字名片的持久化记录。
// Slug 在创建时生成且不可变；ProfileImage 与 QRCode 允许为空。
type BusinessCard struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255" json:"name"`
	JobTitle     string    `gorm:"size:255" json:"job_title"`
	Company      string    `gorm:"size:255" json:"company"`
	Phone        string    `gorm:"size:64" json:"phone"`
	Email        string    `gorm:"size:255" json:"email"`
	Facebook     string    `gorm:"size:512" json:"facebook"`
	Tiktok       string    `gorm:"size:512" json:"tiktok"`
	Youtube      string    `gorm:"size:512" json:"youtube"`
	Address      string    `gorm:"size:512" json:"address"`
	Color        string    `gorm:"size:16;default:'#3498db'" json:"color"`
	ProfileImage *string   `gorm:"size:512" json:"profile_image"`
	Slug         string    `gorm:"uniqueIndex;size:255" json:"slug"`
	QRCode       *string   `gorm:"column:qr_code;size:512" json:"qr_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定与既有数据兼容的表名。
func (BusinessCard) TableName() string {
	return "business_cards"
}
