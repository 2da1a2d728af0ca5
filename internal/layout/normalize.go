package layout

// FallbackHeight is the render height used for images whose dimensions are
// unusable, so no NaN or Inf reaches the packer.
const FallbackHeight = 200

// Normalize returns the height of img when scaled to targetWidth, keeping
// its aspect ratio.
func Normalize(img Image, targetWidth float64) float64 {
	if img.Width <= 0 || img.Height <= 0 {
		return FallbackHeight
	}
	return targetWidth * float64(img.Height) / float64(img.Width)
}

// NewItems scales images to the configured render width and numbers them in
// input order. badges may be nil or shorter than images; an item with a
// non-empty badge reserves cfg.BadgeHeight on top of its image.
func NewItems(images []Image, badges []*Badge, cfg Config) []Item {
	items := make([]Item, len(images))
	for i, img := range images {
		var badge *Badge
		if i < len(badges) && !badges[i].IsEmpty() {
			badge = badges[i]
		}
		h := Normalize(img, cfg.ImageWidth)
		if badge != nil {
			h += cfg.BadgeHeight
		}
		items[i] = Item{
			Image:        img,
			RenderHeight: h,
			Seq:          i,
			Badge:        badge,
		}
	}
	return items
}
