package models

// ImageInfo holds the container-format attributes of a decoded image. The
// raw tag blob stays out of here; EXIF is carried separately.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ImageRecord is the durable metadata row for one ingested image. Checksum
// is the hex SHA-256 of the file bytes and uniquely determines the record:
// re-ingesting identical bytes overwrites the same row.
type ImageRecord struct {
	Checksum string            `db:"checksum"`
	Info     ImageInfo         `db:"info"`
	EXIF     map[string]string `db:"exif"`
}

// AlbumMembership states that the image with Checksum belongs to Album. The
// album name is derived from the upload key path at ingestion time.
type AlbumMembership struct {
	Album    string `db:"album"`
	Checksum string `db:"checksum"`
}

// UploadEvent is one record out of an upload-notification message: a new
// object landed at Bucket/Key. Key is already percent-decoded.
type UploadEvent struct {
	Bucket string
	Key    string
	Size   int64
}

// ThumbnailJob asks for one derivative: resize Bucket/Key to fit inside
// Width x Height.
type ThumbnailJob struct {
	Bucket string `json:"s3_bucket"`
	Key    string `json:"s3_key"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ThumbnailSize struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// DefaultThumbnailSizes is every derivative generated per original unless
// the config overrides the table. Read-only after process start.
var DefaultThumbnailSizes = []ThumbnailSize{
	{150, 150},
	{320, 320},
	{750, 1334}, // iPhone 6/6S
	{768, 1024}, // iPad Mini
	{1024, 768}, // iPad Mini
	{1080, 1920},
	{1334, 750}, // iPhone 6/6S
	{1440, 2560},
	{1536, 2048},
	{1920, 1080},
	{2048, 1536},
	{2560, 1440},
	{2048, 2732}, // iPad Pro
	{2732, 2048}, // iPad Pro
}
