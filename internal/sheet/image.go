package sheet

import (
	"fmt"
	"strings"
)

const DefaultCloudinaryCloud = "dvh5crcf9"

// ImageRef is an image with its final source URL.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ImageResolver derives source URLs for images stored as Cloudinary
// (publicId, version) pairs.
type ImageResolver struct {
	Cloud string
}

func (r ImageResolver) cloud() string {
	if c := strings.TrimSpace(r.Cloud); c != "" {
		return c
	}
	return DefaultCloudinaryCloud
}

// URL returns the direct URL when present, otherwise one derived from the
// public id. ok is false when neither is available.
func (r ImageResolver) URL(img Image) (string, bool) {
	if u := strings.TrimSpace(img.URL); u != "" {
		return u, true
	}
	id := strings.Trim(strings.TrimSpace(img.PublicID), "/")
	if id == "" {
		return "", false
	}
	base := fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/", r.cloud())
	if v := strings.TrimSpace(string(img.Version)); v != "" {
		return base + "v" + v + "/" + id, true
	}
	return base + id, true
}

// Resolve maps images to refs, silently dropping the ones without a source.
// label is used for generated alt text ("Question image 2").
func (r ImageResolver) Resolve(images []Image, label string) []ImageRef {
	out := make([]ImageRef, 0, len(images))
	for _, img := range images {
		src, ok := r.URL(img)
		if !ok {
			continue
		}
		alt := img.Alt
		if alt == "" {
			alt = fmt.Sprintf("%s %d", label, len(out)+1)
		}
		out = append(out, ImageRef{Src: src, Alt: alt})
	}
	return out
}
