// Package video turns the admin supplied launch URL into an embeddable
// YouTube player URL.
package video

import (
	"net/url"
	"regexp"
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=|live/)|youtu\.be/)([^"&?/\s]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractID returns the 11 character video id from a watch, share, embed or
// live URL, or a bare id. It returns "" when nothing matches.
func ExtractID(raw string) string {
	if raw == "" {
		return ""
	}
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

// EmbedURL builds the player URL used on the launch page: autoplay, no
// related videos, reduced branding, inline playback on mobile.
func EmbedURL(id string) string {
	params := url.Values{}
	params.Set("autoplay", "1")
	params.Set("mute", "0")
	params.Set("rel", "0")
	params.Set("modestbranding", "1")
	params.Set("iv_load_policy", "3")
	params.Set("cc_load_policy", "0")
	params.Set("playsinline", "1")
	params.Set("enablejsapi", "1")

	return "https://www.youtube.com/embed/" + id + "?" + params.Encode()
}
