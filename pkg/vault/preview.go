package vault

import (
	"path/filepath"
	"strings"
)

// Kind selects how a file is previewed. It is derived from the extension only.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindGeneric  Kind = "generic"
)

var kindByExt = map[string]Kind{
	"jpg":  KindImage,
	"jpeg": KindImage,
	"png":  KindImage,
	"webp": KindImage,
	"gif":  KindImage,
	"pdf":  KindDocument,
	"mp4":  KindVideo,
	"webm": KindVideo,
	"mp3":  KindAudio,
	"wav":  KindAudio,
}

// PreviewKind maps a file name to its preview kind.
func PreviewKind(name string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if k, ok := kindByExt[ext]; ok {
		return k
	}
	return KindGeneric
}
