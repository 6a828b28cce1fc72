package stt

// ModelDetail describes one Whisper model size. All sizes are multilingual;
// selection trades speed for accuracy, not language coverage.
type ModelDetail struct {
	Name        string `json:"name"`
	Parameters  string `json:"parameters"`
	VRAM        string `json:"vram"`
	Speed       string `json:"speed"`
	Description string `json:"description"`
}

// AvailableModels lists the Whisper model sizes a backend can serve.
func AvailableModels() []ModelDetail {
	return []ModelDetail{
		{Name: "tiny", Parameters: "39M", VRAM: "~1GB", Speed: "~10x faster", Description: "Fastest, least accurate"},
		{Name: "base", Parameters: "74M", VRAM: "~1GB", Speed: "~7x faster", Description: "Good balance (default)"},
		{Name: "small", Parameters: "244M", VRAM: "~2GB", Speed: "~4x faster", Description: "Better accuracy"},
		{Name: "medium", Parameters: "769M", VRAM: "~5GB", Speed: "~2x faster", Description: "High accuracy"},
		{Name: "large", Parameters: "1550M", VRAM: "~10GB", Speed: "1x (baseline)", Description: "Best accuracy, requires GPU"},
	}
}
