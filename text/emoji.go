package text

// isEmojiRune reports whether a rune defaults to emoji presentation, or
// is a component of an emoji sequence. Glyphs shaped from such runes are
// flagged IsEmoji so the rasterizer can take the color bitmap path.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // extended-A symbols
		return true
	case r >= 0x2600 && r <= 0x26FF: // miscellaneous symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r == 0xFE0F: // emoji variation selector
		return true
	}
	return false
}

// clusterIsEmoji reports whether a cluster of runes presents as emoji:
// any rune with default emoji presentation, or a text-default rune
// followed by the emoji variation selector.
func clusterIsEmoji(runes []rune) bool {
	for i, r := range runes {
		if r == 0xFE0E { // text variation selector wins
			return false
		}
		if isEmojiRune(r) {
			return true
		}
		if i+1 < len(runes) && runes[i+1] == 0xFE0F {
			return true
		}
	}
	return false
}
