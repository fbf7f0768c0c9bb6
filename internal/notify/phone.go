package notify

import "strings"

const cameroonPrefix = "+237"

// NormalizePhone converts Cameroon phone numbers to international format on a
// best-effort basis. Spaces, dashes and parentheses are stripped; numbers
// already carrying the +237 prefix pass through; bare 237 numbers gain a "+";
// 9-digit local numbers starting with 6 gain the full prefix. Anything else
// is returned unchanged, never rejected.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	for _, ch := range []string{" ", "-", "(", ")"} {
		phone = strings.ReplaceAll(phone, ch, "")
	}

	if strings.HasPrefix(phone, cameroonPrefix) {
		return phone
	}
	if strings.HasPrefix(phone, "237") {
		return "+" + phone
	}
	if strings.HasPrefix(phone, "6") && len(phone) == 9 {
		return cameroonPrefix + phone
	}
	return phone
}
