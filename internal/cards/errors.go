package cards

import "errors"

// 仓储层对外暴露的错误种类。handler 据此映射 HTTP 状态码，
// 对外只传递一条人类可读的消息。
var (
	ErrInvalidFileType = errors.New("only image files are allowed")
	ErrMissingCompany  = errors.New("company name is required to generate a slug")
	ErrUploadFailed    = errors.New("failed to upload profile image")
	ErrNotFound        = errors.New("business card not found")
)
