package media

// CropPreset is the output shape the admin crop tool renders before
// uploading. The server never re-crops.
type CropPreset struct {
	Shape       string  `json:"shape"`
	AspectRatio float64 `json:"aspectRatio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

var CropPresets = []CropPreset{
	{Shape: "brand", Width: 600, Height: 400},
	{Shape: "product", Width: 800, Height: 800},
	{Shape: "category", Width: 800, Height: 600},
	{Shape: "hero", Width: 1920, Height: 720},
	{Shape: "promo", Width: 1200, Height: 600},
	{Shape: "bottom", Width: 1600, Height: 400},
	{Shape: "news", Width: 1280, Height: 720},
}

func init() {
	for i := range CropPresets {
		p := &CropPresets[i]
		p.AspectRatio = float64(p.Width) / float64(p.Height)
	}
}
