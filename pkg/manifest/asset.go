package manifest

import "strings"

// assetExtensions are font, image, audio and video file extensions
var assetExtensions = map[string]bool{
	// Fonts
	"eot": true, "otf": true, "ttc": true, "ttf": true, "woff": true, "woff2": true,

	// Images
	"apng": true, "avif": true, "bmp": true, "cur": true, "gif": true, "heic": true,
	"ico": true, "jpeg": true, "jpg": true, "png": true, "psd": true, "svg": true,
	"tif": true, "tiff": true, "webp": true,

	// Audio
	"aac": true, "aif": true, "aiff": true, "flac": true, "m4a": true, "mid": true,
	"midi": true, "mp3": true, "oga": true, "ogg": true, "opus": true, "wav": true,
	"weba": true, "wma": true,

	// Video
	"3gp": true, "avi": true, "flv": true, "m4v": true, "mkv": true, "mov": true,
	"mp4": true, "mpeg": true, "mpg": true, "ogv": true, "webm": true, "wmv": true,
}

// IsAsset reports whether file names a font, image, audio or video file
func IsAsset(file string) bool {
	ext := strings.TrimPrefix(extname(file), ".")
	if ext == "" {
		return false
	}
	return assetExtensions[strings.ToLower(ext)]
}
