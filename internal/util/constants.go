package util

// 存储后端类型，对应配置 storage.type
const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 上传与导出用到的 MIME 类型
const (
	MimeImage = "image/"
	MimeCSV   = "text/csv"
)

// AllowedScreenshotExtensions 题目截图允许的扩展名
var AllowedScreenshotExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}
