package control

import (
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// GalleryConfig declares the media gallery screen. A gallery item holds a
// single image, projected into a one-element image list so the attach and
// remove operations behave like every other screen. When more than one
// image is attached the last one wins.
func GalleryConfig() Config[models.GalleryItem] {
	return Config[models.GalleryItem]{
		Collection: "gallery",
		Search: func(g models.GalleryItem) []string {
			return []string{g.Title, g.Description}
		},
		Rules: []Rule[models.GalleryItem]{
			{
				Valid:   func(g models.GalleryItem) bool { return g.Image != "" },
				Message: "الصورة مطلوبة",
			},
		},
		Images: func(g models.GalleryItem) models.ImageList {
			if g.Image == "" {
				return models.ImageList{}
			}
			return models.ImageList{models.RemoteImage(g.Image)}
		},
		SetImages: func(g *models.GalleryItem, images models.ImageList) {
			if len(images) == 0 {
				g.Image = ""
				return
			}
			g.Image = images[len(images)-1].String()
		},
	}
}
