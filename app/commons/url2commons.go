package commons

import "strings"

const URL2CommonsBase = "https://tools.wmflabs.org/url2commons/index.html"

// URL2CommonsCommand builds a url2commons tool link that uploads imageURL as
// filename with the given description. It returns "" when imageURL or
// description is empty.
func URL2CommonsCommand(imageURL, description, filename string, autorun bool) string {
	if imageURL == "" || description == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(URL2CommonsBase)
	b.WriteString("?urls=")
	b.WriteString(quote(strings.ReplaceAll(imageURL, "_", "%5F")))
	b.WriteString("%20")
	b.WriteString(quote(filename))
	if autorun {
		b.WriteString("&run=1")
	}
	b.WriteString("&desc=")
	b.WriteString(quote(description))
	return b.String()
}

// quote percent-encodes every byte except unreserved characters and "/".
func quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}
