package domain

// SourceKind identifies what a RecognitionRequest carries.
type SourceKind string

const (
	SourceImage   SourceKind = "image"
	SourceRawText SourceKind = "raw_text"
)

// Classification is the shape the reconciler assigned to a recovered payload.
type Classification string

const (
	ClassificationRawTextOnly      Classification = "raw_text_only"
	ClassificationStructured       Classification = "structured"
	ClassificationLegacyStructured Classification = "legacy_structured"
)

// NeedsExtraction reports whether the heuristic extraction engine must run.
func (c Classification) NeedsExtraction() bool {
	return c == ClassificationRawTextOnly
}

// ImageType represents the image formats accepted for upload.
type ImageType string

const (
	ImageTypeJPG ImageType = "jpg"
	ImageTypePNG ImageType = "png"
	ImageTypeGIF ImageType = "gif"
	ImageTypeBMP ImageType = "bmp"
)

// AllowedImageTypes maps ImageType to its MIME content type.
var AllowedImageTypes = map[ImageType]string{
	ImageTypeJPG: "image/jpeg",
	ImageTypePNG: "image/png",
	ImageTypeGIF: "image/gif",
	ImageTypeBMP: "image/bmp",
}

// AllowedContentTypes maps sniffed MIME content types back to ImageType.
var AllowedContentTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPG,
	"image/png":  ImageTypePNG,
	"image/gif":  ImageTypeGIF,
	"image/bmp":  ImageTypeBMP,
}

// AllowedExtensions maps file extensions (without dot) to ImageType.
var AllowedExtensions = map[string]ImageType{
	"jpg":  ImageTypeJPG,
	"jpeg": ImageTypeJPG,
	"png":  ImageTypePNG,
	"gif":  ImageTypeGIF,
	"bmp":  ImageTypeBMP,
}

// ExportFormat selects the FieldSet export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
