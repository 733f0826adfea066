package model

// OptionLabel returns the letter label for a 0-based option slot:
// 0 → "A", 25 → "Z", 26 → "AA".
func OptionLabel(slot int) string {
	if slot < 0 {
		return "?"
	}
	if slot < 26 {
		return string(rune('A' + slot))
	}
	return OptionLabel(slot/26-1) + OptionLabel(slot%26)
}

// KeyLabel returns the letter label for a 1-based canonical answer key.
func KeyLabel(key int) string {
	return OptionLabel(key - 1)
}
