// Package locale holds the static catalog of language variants the app can
// tutor in, with their speech capabilities.
package locale

// Variant describes one supported locale. STT and TTS flag which speech
// directions are available for it.
type Variant struct {
	Locale     string `json:"locale"`
	ISO6391    string `json:"iso_639_1"`
	ISO31661   string `json:"iso_3166_1"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	STT        bool   `json:"stt"`
	TTS        bool   `json:"tts"`
}

// Variants is the full catalog, ordered by English name.
var Variants = []Variant{
	{Locale: "de-DE", ISO6391: "de", ISO31661: "DE", Name: "German", NativeName: "Deutsch", STT: true, TTS: true},
	{Locale: "en-GB", ISO6391: "en", ISO31661: "GB", Name: "English (UK)", NativeName: "English (UK)", STT: true, TTS: true},
	{Locale: "en-US", ISO6391: "en", ISO31661: "US", Name: "English (US)", NativeName: "English (US)", STT: true, TTS: true},
	{Locale: "fr-FR", ISO6391: "fr", ISO31661: "FR", Name: "French", NativeName: "Français", STT: true, TTS: true},
	{Locale: "it-IT", ISO6391: "it", ISO31661: "IT", Name: "Italian", NativeName: "Italiano", STT: true, TTS: true},
	{Locale: "ja-JP", ISO6391: "ja", ISO31661: "JP", Name: "Japanese", NativeName: "日本語", STT: true, TTS: true},
	{Locale: "ko-KR", ISO6391: "ko", ISO31661: "KR", Name: "Korean", NativeName: "한국어", STT: true, TTS: false},
	{Locale: "zh-CN", ISO6391: "zh", ISO31661: "CN", Name: "Mandarin Chinese", NativeName: "中文", STT: true, TTS: true},
	{Locale: "nl-NL", ISO6391: "nl", ISO31661: "NL", Name: "Dutch", NativeName: "Nederlands", STT: true, TTS: false},
	{Locale: "pl-PL", ISO6391: "pl", ISO31661: "PL", Name: "Polish", NativeName: "Polski", STT: true, TTS: false},
	{Locale: "pt-BR", ISO6391: "pt", ISO31661: "BR", Name: "Portuguese (Brazil)", NativeName: "Português (Brasil)", STT: true, TTS: true},
	{Locale: "pt-PT", ISO6391: "pt", ISO31661: "PT", Name: "Portuguese (Portugal)", NativeName: "Português (Portugal)", STT: true, TTS: false},
	{Locale: "ru-RU", ISO6391: "ru", ISO31661: "RU", Name: "Russian", NativeName: "Русский", STT: true, TTS: false},
	{Locale: "es-ES", ISO6391: "es", ISO31661: "ES", Name: "Spanish (Spain)", NativeName: "Español (España)", STT: true, TTS: true},
	{Locale: "es-MX", ISO6391: "es", ISO31661: "MX", Name: "Spanish (Mexico)", NativeName: "Español (México)", STT: true, TTS: true},
	{Locale: "sv-SE", ISO6391: "sv", ISO31661: "SE", Name: "Swedish", NativeName: "Svenska", STT: true, TTS: false},
}

// List returns the catalog, optionally restricted to STT-capable locales.
func List(sttOnly bool) []Variant {
	if !sttOnly {
		out := make([]Variant, len(Variants))
		copy(out, Variants)
		return out
	}

	var out []Variant
	for _, v := range Variants {
		if v.STT {
			out = append(out, v)
		}
	}
	return out
}

// WhisperCode maps a locale or ISO-639-1 code to the ISO-639-1 language hint
// Whisper expects. Unknown values come back unchanged.
func WhisperCode(localeOrCode string) string {
	for _, v := range Variants {
		if v.Locale == localeOrCode || v.ISO6391 == localeOrCode {
			return v.ISO6391
		}
	}
	return localeOrCode
}
