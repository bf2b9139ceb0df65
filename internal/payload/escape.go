package payload

import "strings"

// RFC 6350 / RFC 5545 TEXT escaping. CR is dropped so CRLF input becomes \n.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", "",
)

// Escaping used by the WIFI: and MATMSG: schemes.
var uriEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

func (f Formatter) textValue(s string) string {
	if !f.EscapeValues {
		return s
	}
	return textEscaper.Replace(s)
}

func (f Formatter) uriValue(s string) string {
	if !f.EscapeValues {
		return s
	}
	return uriEscaper.Replace(s)
}
